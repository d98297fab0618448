package dispatch

import (
	"encoding/json"
	"errors"
	"net/http"
)

// problemErrorHandler is the default ErrorHandler.
func problemErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeErrorResponse(w, err)
}

// writeErrorResponse writes an error as an RFC 9457 problem details response.
func writeErrorResponse(w http.ResponseWriter, err error) {
	status := ErrorStatus(err)

	// If the error is already a ProblemDetail, use it directly. The body
	// status always matches the one sent.
	var pd *ProblemDetail
	if errors.As(err, &pd) {
		problem := *pd
		problem.Status = status
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(status)
		//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
		json.NewEncoder(w).Encode(&problem)
		return
	}

	problem := &ProblemDetail{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: problemDetail(err, status),
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(problem)
}

// problemDetail picks the client-facing detail for err. Server-side
// failures only expose the failure kind, never handler internals.
func problemDetail(err error, status int) string {
	var de *DispatchError
	if !errors.As(err, &de) {
		return err.Error()
	}
	if status >= http.StatusInternalServerError {
		if sentinel := de.Kind.sentinel(); sentinel != nil {
			return sentinel.Error()
		}
		return http.StatusText(status)
	}
	if de.Kind == KindInvocation && de.Err != nil {
		return de.Err.Error()
	}
	return de.Error()
}
