package web

import (
	"context"
	"net/http"

	"github.com/NasaVasa/eventdash/internal/domain"
	"github.com/NasaVasa/eventdash/internal/usecase"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const (
	sessionCookieName = "eventdash_session"
	sessionMaxAge     = 30 * 24 * 3600
)

type session struct {
	ID string `json:"id"`
}

type sessionKey struct{}

// Sessions issues a signed cookie naming the operator session. Each session
// gets its own workspace and tab preference scope.
type Sessions struct {
	sc     *securecookie.SecureCookie
	secure bool
	logger *zap.Logger
}

func NewSessions(authKey []byte, secure bool, logger *zap.Logger) *Sessions {
	sc := securecookie.New(authKey, nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(sessionMaxAge)
	return &Sessions{sc: sc, secure: secure, logger: logger}
}

// Middleware loads the session from its cookie or starts a new one, then
// tags the request context with the session id and audit actor.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.load(r)
		if err != nil {
			sess = session{ID: uuid.NewString()}
			if err := s.save(w, sess); err != nil {
				s.logger.Error("failed to issue session cookie", zap.Error(err))
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess.ID)
		ctx = usecase.WithActor(ctx, "web:"+sess.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Sessions) load(r *http.Request) (session, error) {
	var sess session
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return sess, err
	}
	if err := s.sc.Decode(sessionCookieName, cookie.Value, &sess); err != nil {
		s.logger.Debug("discarding invalid session cookie", zap.Error(err))
		return sess, err
	}
	if _, err := uuid.Parse(sess.ID); err != nil {
		return sess, err
	}
	return sess, nil
}

func (s *Sessions) save(w http.ResponseWriter, sess session) error {
	encoded, err := s.sc.Encode(sessionCookieName, sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// sessionScope is the preference scope of the request's session.
func sessionScope(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return domain.SessionScope(id)
}
