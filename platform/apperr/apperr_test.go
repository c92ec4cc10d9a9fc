package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("missing"), http.StatusNotFound},
		{Validation("bad"), http.StatusBadRequest},
		{BadRequest("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusConflict},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{Internal("boom"), http.StatusInternalServerError},
		{Unavailable("physics down"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.err.Message, tc.want, got)
		}
	}
}

func TestGetKindFollowsWrapping(t *testing.T) {
	base := NotFound("survey not found").WithOp("repository.GetSurvey")
	wrapped := fmt.Errorf("load survey: %w", base)

	if !Is(wrapped, KindNotFound) {
		t.Fatalf("expected KindNotFound through wrap, got %v", GetKind(wrapped))
	}
	if GetKind(fmt.Errorf("plain")) != KindUnknown {
		t.Fatal("expected KindUnknown for a plain error")
	}
	if base.Error() != "repository.GetSurvey: survey not found" {
		t.Fatalf("unexpected message %q", base.Error())
	}
}
