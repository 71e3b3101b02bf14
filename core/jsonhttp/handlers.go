package jsonhttp

import (
	"net/http"

	"resenje.org/web"
)

// MethodHandler dispatches a request to the handler registered for its
// method, answering 405 in JSON form otherwise.
type MethodHandler map[string]http.Handler

func (h MethodHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	web.HandleMethods(h, `{"message":"Method Not Allowed","code":405}`, DefaultContentTypeHeader, w, r)
}

// NotFoundHandler answers 404 in JSON form.
func NotFoundHandler(w http.ResponseWriter, _ *http.Request) {
	NotFound(w, nil)
}
