package identity

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

const callbackPath = "/callback"

type callbackResult struct {
	code string
	err  error
}

// callbackRouter serves the OAuth2 loopback redirect. The first request
// carrying the expected state is reported on out; out must have room for
// one value.
func callbackRouter(state string, out chan<- callbackResult) http.Handler {
	var once sync.Once
	r := chi.NewRouter()
	r.Get(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "unexpected state", http.StatusBadRequest)
			return
		}

		var res callbackResult
		switch e := q.Get("error"); {
		case e == "access_denied":
			res.err = ErrCancelled
		case e != "":
			res.err = fmt.Errorf("%w: %s", ErrProvider, e)
		case q.Get("code") == "":
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		default:
			res.code = q.Get("code")
		}

		once.Do(func() { out <- res })

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if res.err != nil {
			_, _ = io.WriteString(w, "Sign-in was not completed. You can close this tab.\n")
			return
		}
		_, _ = io.WriteString(w, "Signed in. You can close this tab and return to the terminal.\n")
	})
	return r
}
