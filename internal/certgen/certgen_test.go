package certgen

import (
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateSelfSigned(t *testing.T) {
	certPEM, keyPEM, err := GenerateSelfSigned([]string{"localhost", "127.0.0.1"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSelfSigned error: %v", err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("cert PEM invalid")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("parse cert: %v", err)
	}
	if cert.Subject.CommonName != "localhost" {
		t.Errorf("CommonName = %q; want %q", cert.Subject.CommonName, "localhost")
	}
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "localhost" {
		t.Errorf("DNSNames = %v; want [localhost]", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 1 || !cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")) {
		t.Errorf("IPAddresses = %v; want [127.0.0.1]", cert.IPAddresses)
	}
	if err := cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature); err != nil {
		t.Errorf("self signature check failed: %v", err)
	}
	if cert.NotAfter.After(time.Now().Add(time.Hour + time.Minute)) {
		t.Errorf("NotAfter = %v; want within an hour", cert.NotAfter)
	}

	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil || keyBlock.Type != "EC PRIVATE KEY" {
		t.Fatalf("key PEM invalid")
	}
	if _, err := x509.ParseECPrivateKey(keyBlock.Bytes); err != nil {
		t.Errorf("parse private key failed: %v", err)
	}
}

func TestGenerateSelfSigned_NoHosts(t *testing.T) {
	if _, _, err := GenerateSelfSigned(nil, time.Hour); err == nil {
		t.Error("expected error for empty host list")
	}
}

func TestSelfSigned(t *testing.T) {
	cert, err := SelfSigned([]string{"localhost"}, time.Hour)
	if err != nil {
		t.Fatalf("SelfSigned error: %v", err)
	}
	if len(cert.Certificate) == 0 || cert.PrivateKey == nil {
		t.Errorf("incomplete certificate: %+v", cert)
	}
}

func TestLoadKeyPair(t *testing.T) {
	dir := t.TempDir()
	certPEM, keyPEM, err := GenerateSelfSigned([]string{"localhost"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	certPath := filepath.Join(dir, "server.crt")
	keyPath := filepath.Join(dir, "server.key")
	if err := os.WriteFile(certPath, certPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadKeyPair(certPath, keyPath); err != nil {
		t.Fatalf("LoadKeyPair error: %v", err)
	}

	if _, err := LoadKeyPair(filepath.Join(dir, "missing.crt"), keyPath); err == nil || !strings.Contains(err.Error(), "read cert") {
		t.Errorf("got %v; want error about reading cert", err)
	}
	if _, err := LoadKeyPair(certPath, filepath.Join(dir, "missing.key")); err == nil || !strings.Contains(err.Error(), "read key") {
		t.Errorf("got %v; want error about reading key", err)
	}

	bad := filepath.Join(dir, "bad.key")
	if err := os.WriteFile(bad, []byte("not a key"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKeyPair(certPath, bad); err == nil || !strings.Contains(err.Error(), "parse key pair") {
		t.Errorf("got %v; want parse key pair error", err)
	}
}
