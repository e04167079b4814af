package http

import (
	"net/http"
	"strings"

	"github.com/atinyakov/apichallenges/internal/challenge"
)

// MethodOverrideHeader lets a POST request act as another verb.
const MethodOverrideHeader = "X-HTTP-Method-Override"

const allowHeartbeat = "GET, HEAD, OPTIONS"

type heartbeatOutcome struct {
	status     int
	direct     challenge.ID
	overridden challenge.ID
}

// heartbeatTable is deliberately irregular; methods missing from it answer 405.
var heartbeatTable = map[string]heartbeatOutcome{
	http.MethodGet:     {status: http.StatusNoContent, direct: challenge.GetHeartbeat204},
	http.MethodHead:    {status: http.StatusNoContent},
	http.MethodOptions: {status: http.StatusOK},
	http.MethodDelete: {
		status:     http.StatusMethodNotAllowed,
		direct:     challenge.DeleteHeartbeat405,
		overridden: challenge.OverrideDeleteHeartbeat405,
	},
	http.MethodPatch: {
		status:     http.StatusInternalServerError,
		direct:     challenge.PatchHeartbeat500,
		overridden: challenge.OverridePatchHeartbeat500,
	},
	http.MethodTrace: {
		status:     http.StatusNotImplemented,
		direct:     challenge.TraceHeartbeat501,
		overridden: challenge.OverrideTraceHeartbeat501,
	},
}

// Heartbeat handles every method on /heartbeat. Responses carry no body.
//
// A TRACE override is honoured on any method; other overrides only on POST.
func Heartbeat(w http.ResponseWriter, r *http.Request) {
	method := r.Method
	overridden := false
	if o := strings.ToUpper(strings.TrimSpace(r.Header.Get(MethodOverrideHeader))); o != "" {
		if o == http.MethodTrace || method == http.MethodPost {
			method, overridden = o, true
		}
	}

	outcome, ok := heartbeatTable[method]
	if !ok {
		outcome = heartbeatOutcome{status: http.StatusMethodNotAllowed}
	}

	switch outcome.status {
	case http.StatusOK, http.StatusMethodNotAllowed:
		w.Header().Set("Allow", allowHeartbeat)
	}
	w.WriteHeader(outcome.status)

	if overridden {
		complete(r, outcome.overridden)
	} else {
		complete(r, outcome.direct)
	}
}
