package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/pos-ledger/internal/auth"
	"github.com/josh-kwaku/pos-ledger/internal/handler"
	"github.com/josh-kwaku/pos-ledger/internal/logging"
	"github.com/josh-kwaku/pos-ledger/internal/repository"
)

type idempotencyStore interface {
	Get(ctx context.Context, key string, actorID uuid.UUID) (*repository.IdempotencyRecord, error)
	Claim(ctx context.Context, rec *repository.IdempotencyRecord) (bool, error)
	Complete(ctx context.Context, key string, actorID uuid.UUID, statusCode int, body []byte) error
	Release(ctx context.Context, key string, actorID uuid.UUID) error
}

// Idempotency claims the request's Idempotency-Key before the handler runs and
// replays the stored response for later requests with the same key, so a
// retried POST cannot record the same payment twice. A key whose first request
// is still running answers 409. Responses of 500 and above release the claim so
// the request may be retried. It must run after Auth.
func Idempotency(store idempotencyStore, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			log := logging.FromContext(r.Context())

			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				handler.RespondAppError(w, handler.ErrMissingIdempotencyKey, nil)
				return
			}

			actorID, ok := auth.ActorIDFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			reqHash := computeHash(r.Method, r.URL.Path, body)

			now := time.Now().UTC()
			claimed, err := store.Claim(r.Context(), &repository.IdempotencyRecord{
				Key:         key,
				ActorID:     actorID,
				RequestHash: reqHash,
				CreatedAt:   now,
				ExpiresAt:   now.Add(ttl),
			})
			if err != nil {
				log.Error("idempotency claim failed", "error", err, "idempotency_key", key)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}

			if !claimed {
				replay(w, r, store, key, actorID, reqHash)
				return
			}

			bg := context.WithoutCancel(r.Context())
			done := false
			defer func() {
				if done {
					return
				}
				if err := store.Release(bg, key, actorID); err != nil {
					log.Error("idempotency release failed", "error", err, "idempotency_key", key)
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode >= http.StatusInternalServerError {
				return
			}

			if err := store.Complete(bg, key, actorID, rec.statusCode, rec.body.Bytes()); err != nil {
				log.Error("idempotency cache store failed", "error", err, "idempotency_key", key)
				return
			}
			done = true
		})
	}
}

// replay answers a request whose key is already held by another record.
func replay(w http.ResponseWriter, r *http.Request, store idempotencyStore, key string, actorID uuid.UUID, reqHash string) {
	log := logging.FromContext(r.Context())

	cached, err := store.Get(r.Context(), key, actorID)
	if err != nil {
		log.Error("idempotency cache lookup failed", "error", err, "idempotency_key", key)
		handler.RespondAppError(w, handler.ErrInternalError, nil)
		return
	}

	switch {
	case cached == nil:
		// The holder released or expired between the claim and the lookup.
		handler.RespondAppError(w, handler.ErrIdempotencyInProgress, nil)
		return
	case cached.RequestHash != reqHash:
		handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
		return
	case cached.Pending():
		handler.RespondAppError(w, handler.ErrIdempotencyInProgress, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Idempotent-Replayed", "true")
	w.WriteHeader(cached.StatusCode)
	if _, err := w.Write(cached.ResponseBody); err != nil {
		log.Error("failed to write idempotent replay", "error", err, "idempotency_key", key)
	}
}

func computeHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return fmt.Sprintf("%x", h.Sum(nil))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
