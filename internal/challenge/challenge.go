// Package challenge holds the catalog of API challenges whose completion is
// tracked per challenger session.
package challenge

// ID identifies a single challenge. IDs double as the keys of the
// challengeStatus map in restorable progress snapshots.
type ID string

const (
	CreateNewChallenger             ID = "CREATE_NEW_CHALLENGER"
	GetChallenges                   ID = "GET_CHALLENGES"
	GetTodos                        ID = "GET_TODOS"
	GetTodosNotPlural404            ID = "GET_TODOS_NOT_PLURAL_404"
	GetTodo                         ID = "GET_TODO"
	GetTodo404                      ID = "GET_TODO_404"
	GetTodosFiltered                ID = "GET_TODOS_FILTERED"
	GetHeadTodos                    ID = "GET_HEAD_TODOS"
	PostTodos                       ID = "POST_TODOS"
	PostTodosBadDoneStatus          ID = "POST_TODOS_BAD_DONE_STATUS"
	PostTodosTooLongTitle           ID = "POST_TODOS_TOO_LONG_TITLE_LENGTH"
	PostTodosTooLongDescription     ID = "POST_TODOS_TOO_LONG_DESCRIPTION_LENGTH"
	PostMaxOutTitleDescription      ID = "POST_MAX_OUT_TITLE_DESCRIPTION_LENGTH"
	PostTodosTooLongPayload         ID = "POST_TODOS_TOO_LONG_PAYLOAD_SIZE"
	PostTodosInvalidExtraField      ID = "POST_TODOS_INVALID_EXTRA_FIELD"
	PutTodos400                     ID = "PUT_TODOS_400"
	PostUpdateTodo                  ID = "POST_UPDATE_TODO"
	PostTodos404                    ID = "POST_TODOS_404"
	PutTodosFull200                 ID = "PUT_TODOS_FULL_200"
	PutTodosPartial200              ID = "PUT_TODOS_PARTIAL_200"
	PutTodosMissingTitle400         ID = "PUT_TODOS_MISSING_TITLE_400"
	PutTodosNoAmendID400            ID = "PUT_TODOS_400_NO_AMEND_ID"
	DeleteTodo                      ID = "DELETE_A_TODO"
	OptionsTodos                    ID = "OPTIONS_TODOS"
	GetAcceptXML                    ID = "GET_ACCEPT_XML"
	GetAcceptJSON                   ID = "GET_ACCEPT_JSON"
	GetAcceptAnyDefaultJSON         ID = "GET_ACCEPT_ANY_DEFAULT_JSON"
	GetAcceptXMLPreferred           ID = "GET_ACCEPT_XML_PREFERRED"
	GetJSONByDefaultNoAccept        ID = "GET_JSON_BY_DEFAULT_NO_ACCEPT"
	GetUnsupportedAccept406         ID = "GET_UNSUPPORTED_ACCEPT_406"
	PostCreateXML                   ID = "POST_CREATE_XML"
	PostCreateJSON                  ID = "POST_CREATE_JSON"
	PostCreateUnsupportedContent415 ID = "POST_CREATE_UNSUPPORTED_CONTENT_TYPE_415"
	GetRestorableProgress           ID = "GET_RESTORABLE_CHALLENGER_PROGRESS_STATUS"
	PutRestorableProgress           ID = "PUT_RESTORABLE_CHALLENGER_PROGRESS_STATUS"
	PutNewRestoredProgress          ID = "PUT_NEW_RESTORED_CHALLENGER_PROGRESS_STATUS"
	GetRestorableTodos              ID = "GET_RESTORABLE_TODOS"
	PutRestorableTodos              ID = "PUT_RESTORABLE_TODOS"
	PostCreateXMLAcceptJSON         ID = "POST_CREATE_XML_ACCEPT_JSON"
	PostCreateJSONAcceptXML         ID = "POST_CREATE_JSON_ACCEPT_XML"
	DeleteHeartbeat405              ID = "DELETE_HEARTBEAT_405"
	PatchHeartbeat500               ID = "PATCH_HEARTBEAT_500"
	TraceHeartbeat501               ID = "TRACE_HEARTBEAT_501"
	GetHeartbeat204                 ID = "GET_HEARTBEAT_204"
	OverrideDeleteHeartbeat405      ID = "OVERRIDE_DELETE_HEARTBEAT_405"
	OverridePatchHeartbeat500       ID = "OVERRIDE_PATCH_HEARTBEAT_500"
	OverrideTraceHeartbeat501       ID = "OVERRIDE_TRACE_HEARTBEAT_501"
	CreateSecretToken401            ID = "CREATE_SECRET_TOKEN_401"
	CreateSecretToken201            ID = "CREATE_SECRET_TOKEN_201"
	GetSecretNote403                ID = "GET_SECRET_NOTE_403"
	GetSecretNote401                ID = "GET_SECRET_NOTE_401"
	GetSecretNote200                ID = "GET_SECRET_NOTE_200"
	PostSecretNote200               ID = "POST_SECRET_NOTE_200"
	PostSecretNote401               ID = "POST_SECRET_NOTE_401"
	PostSecretNote403               ID = "POST_SECRET_NOTE_403"
	GetSecretNoteBearer200          ID = "GET_SECRET_NOTE_BEARER_200"
	PostSecretNoteBearer200         ID = "POST_SECRET_NOTE_BEARER_200"
	DeleteAllTodos                  ID = "DELETE_ALL_TODOS"
	PostAllTodos                    ID = "POST_ALL_TODOS"
)

// Definition describes a challenge in the catalog.
type Definition struct {
	ID          ID
	Name        string
	Description string
}

// Catalog lists every challenge in presentation order.
var Catalog = []Definition{
	{CreateNewChallenger, "POST /challenger (201)", "Issue a POST request on the `/challenger` end point, with no body, to create a new challenger session."},
	{GetChallenges, "GET /challenges (200)", "Issue a GET request on the `/challenges` end point."},
	{GetTodos, "GET /todos (200)", "Issue a GET request on the `/todos` end point."},
	{GetTodosNotPlural404, "GET /todo (404) not plural", "Issue a GET request on the `/todo` end point should 404 because nouns should be plural."},
	{GetTodo, "GET /todos/{id} (200)", "Issue a GET request on the `/todos/{id}` end point to return a specific todo."},
	{GetTodo404, "GET /todos/{id} (404)", "Issue a GET request on the `/todos/{id}` end point for a todo that does not exist."},
	{GetTodosFiltered, "GET /todos (200) ?filter", "Issue a GET request on the `/todos` end point with a query filter to get only todos which are 'done'."},
	{GetHeadTodos, "HEAD /todos (200)", "Issue a HEAD request on the `/todos` end point."},
	{PostTodos, "POST /todos (201)", "Issue a POST request to successfully create a todo."},
	{PostTodosBadDoneStatus, "POST /todos (400) doneStatus", "Issue a POST request to create a todo but fail validation on the `doneStatus` field."},
	{PostTodosTooLongTitle, "POST /todos (400) title too long", "Issue a POST request to create a todo but fail length validation on the `title` field."},
	{PostTodosTooLongDescription, "POST /todos (400) description too long", "Issue a POST request to create a todo but fail length validation on the `description` field."},
	{PostMaxOutTitleDescription, "POST /todos (201) max out content", "Issue a POST request to create a todo with maximum length title and description fields."},
	{PostTodosTooLongPayload, "POST /todos (413) content too long", "Issue a POST request to create a todo but fail payload length validation on the `description` because your whole payload exceeds maximum allowable 5000 characters."},
	{PostTodosInvalidExtraField, "POST /todos (400) extra", "Issue a POST request to create a todo but fail validation because your payload contains an unrecognised field."},
	{PutTodos400, "PUT /todos/{id} (400)", "Issue a PUT request to unsuccessfully create a todo."},
	{PostUpdateTodo, "POST /todos/{id} (200)", "Issue a POST request to successfully update a todo."},
	{PostTodos404, "POST /todos/{id} (404)", "Issue a POST request for a todo which does not exist."},
	{PutTodosFull200, "PUT /todos/{id} full (200)", "Issue a PUT request to update an existing todo with a complete payload."},
	{PutTodosPartial200, "PUT /todos/{id} partial (200)", "Issue a PUT request to update an existing todo with just mandatory items in payload."},
	{PutTodosMissingTitle400, "PUT /todos/{id} no title (400)", "Issue a PUT request to fail to update an existing todo because title is missing in payload."},
	{PutTodosNoAmendID400, "PUT /todos/{id} no amend id (400)", "Issue a PUT request to fail to update an existing todo because id different in payload."},
	{DeleteTodo, "DELETE /todos/{id} (200)", "Issue a DELETE request to successfully delete a todo."},
	{OptionsTodos, "OPTIONS /todos (200)", "Issue an OPTIONS request on the `/todos` end point."},
	{GetAcceptXML, "GET /todos (200) XML", "Issue a GET request on the `/todos` end point with an `Accept` header of `application/xml`."},
	{GetAcceptJSON, "GET /todos (200) JSON", "Issue a GET request on the `/todos` end point with an `Accept` header of `application/json`."},
	{GetAcceptAnyDefaultJSON, "GET /todos (200) ANY", "Issue a GET request on the `/todos` end point with an `Accept` header of `*/*`."},
	{GetAcceptXMLPreferred, "GET /todos (200) XML pref", "Issue a GET request on the `/todos` end point with an `Accept` header of `application/xml, application/json`."},
	{GetJSONByDefaultNoAccept, "GET /todos (200) no accept", "Issue a GET request on the `/todos` end point with no `Accept` header present."},
	{GetUnsupportedAccept406, "GET /todos (406)", "Issue a GET request on the `/todos` end point with an `Accept` header `application/gzip`."},
	{PostCreateXML, "POST /todos XML", "Issue a POST request on the `/todos` end point to create a todo using `Content-Type` and `Accept` of `application/xml`."},
	{PostCreateJSON, "POST /todos JSON", "Issue a POST request on the `/todos` end point to create a todo using `Content-Type` and `Accept` of `application/json`."},
	{PostCreateUnsupportedContent415, "POST /todos (415)", "Issue a POST request on the `/todos` end point with an unsupported content type."},
	{GetRestorableProgress, "GET /challenger/guid (existing X-CHALLENGER)", "Issue a GET request on the `/challenger/{guid}` end point, with an existing challenger GUID."},
	{PutRestorableProgress, "PUT /challenger/guid RESTORE", "Issue a PUT request on the `/challenger/{guid}` end point, with an existing challenger GUID, to restore that challenger's progress."},
	{PutNewRestoredProgress, "PUT /challenger/guid CREATE", "Issue a PUT request on the `/challenger/{guid}` end point, with a challenger GUID not currently in memory, to restore that challenger's progress into memory."},
	{GetRestorableTodos, "GET /challenger/database/guid (200)", "Issue a GET request on the `/challenger/database/{guid}` end point, to retrieve the current todos database for the user."},
	{PutRestorableTodos, "PUT /challenger/database/guid (Update)", "Issue a PUT request on the `/challenger/database/{guid}` end point, with a payload to restore the Todos database in memory."},
	{PostCreateXMLAcceptJSON, "POST /todos XML to JSON", "Issue a POST request on the `/todos` end point to create a todo using `Content-Type` `application/xml` and `Accept` `application/json`."},
	{PostCreateJSONAcceptXML, "POST /todos JSON to XML", "Issue a POST request on the `/todos` end point to create a todo using `Content-Type` `application/json` and `Accept` `application/xml`."},
	{DeleteHeartbeat405, "DELETE /heartbeat (405)", "Issue a DELETE request on the `/heartbeat` end point and receive 405 (Method Not Allowed)."},
	{PatchHeartbeat500, "PATCH /heartbeat (500)", "Issue a PATCH request on the `/heartbeat` end point and receive 500 (internal server error)."},
	{TraceHeartbeat501, "TRACE /heartbeat (501)", "Issue a TRACE request on the `/heartbeat` end point and receive 501 (Not Implemented)."},
	{GetHeartbeat204, "GET /heartbeat (204)", "Issue a GET request on the `/heartbeat` end point and receive 204 when server is running."},
	{OverrideDeleteHeartbeat405, "POST /heartbeat as DELETE (405)", "Issue a POST request on the `/heartbeat` end point and receive 405 when you override the Method Verb to a DELETE."},
	{OverridePatchHeartbeat500, "POST /heartbeat as PATCH (500)", "Issue a POST request on the `/heartbeat` end point and receive 500 when you override the Method Verb to a PATCH."},
	{OverrideTraceHeartbeat501, "POST /heartbeat as Trace (501)", "Issue a POST request on the `/heartbeat` end point and receive 501 (Not Implemented) when you override the Method Verb to a TRACE."},
	{CreateSecretToken401, "POST /secret/token (401)", "Issue a POST request on the `/secret/token` end point and receive 401 when Basic auth username/password is not admin/password."},
	{CreateSecretToken201, "POST /secret/token (201)", "Issue a POST request on the `/secret/token` end point and receive 201 when Basic auth username/password is admin/password."},
	{GetSecretNote403, "GET /secret/note (403)", "Issue a GET request on the `/secret/note` end point and receive 403 when X-AUTH-TOKEN does not match a valid token."},
	{GetSecretNote401, "GET /secret/note (401)", "Issue a GET request on the `/secret/note` end point and receive 401 when no X-AUTH-TOKEN header present."},
	{GetSecretNote200, "GET /secret/note (200)", "Issue a GET request on the `/secret/note` end point receive 200 when valid X-AUTH-TOKEN used - response body should contain the note."},
	{PostSecretNote200, "POST /secret/note (200)", "Issue a POST request on the `/secret/note` end point with a note payload and receive 200 when valid X-AUTH-TOKEN used."},
	{PostSecretNote401, "POST /secret/note (401)", "Issue a POST request on the `/secret/note` end point with a note payload and receive 401 when no X-AUTH-TOKEN present."},
	{PostSecretNote403, "POST /secret/note (403)", "Issue a POST request on the `/secret/note` end point with a note payload and receive 403 when X-AUTH-TOKEN does not match a valid token."},
	{GetSecretNoteBearer200, "GET /secret/note (Bearer)", "Issue a GET request on the `/secret/note` end point receive 200 when using the X-AUTH-TOKEN value as an Authorization Bearer token."},
	{PostSecretNoteBearer200, "POST /secret/note (Bearer)", "Issue a POST request on the `/secret/note` end point with a note payload e.g. {\"note\":\"my note\"} and receive 200 when valid X-AUTH-TOKEN value used as an Authorization Bearer token."},
	{DeleteAllTodos, "DELETE /todos/{id} (200) all", "Issue a DELETE request to successfully delete the last todo in system so that there are no more todos in the system."},
	{PostAllTodos, "POST /todos (201) all", "Issue as many POST requests as it takes to add the maximum number of TODOS allowed for a user."},
}

var known = func() map[ID]struct{} {
	m := make(map[ID]struct{}, len(Catalog))
	for _, d := range Catalog {
		m[d.ID] = struct{}{}
	}
	return m
}()

// Known reports whether id names a challenge in the catalog.
func Known(id ID) bool {
	_, ok := known[id]
	return ok
}
