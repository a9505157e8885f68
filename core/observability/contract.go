package observability

const (
	AttrHTTPMethod     = "http.request.method"
	AttrURLFull        = "url.full"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrQueryID        = "druid.query_id"
	AttrErrorType      = "error.type"

	// outcomeOK labels successful queries in metrics
	outcomeOK = "ok"
	// outcomeUnknown labels failures that carry no error code
	outcomeUnknown = "unknown"
)
