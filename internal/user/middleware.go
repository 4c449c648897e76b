package user

import (
	"context"
	"log"
	"net/http"

	"github.com/signlyhq/signly/internal/auth"
	"github.com/signlyhq/signly/internal/models"
)

type dbContextKey string

const (
	dbUserContextKey dbContextKey = "db_user"
)

func GetDBUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(dbUserContextKey).(*models.User)
	return user, ok
}

// UserMiddleware provisions the local user row for each authenticated request
// and attaches it to the context.
func UserMiddleware(userService Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := auth.GetUserFromRequest(r)
			if !ok {
				http.Error(w, "Unauthorized: User not found in context", http.StatusUnauthorized)
				return
			}

			dbUser, err := userService.GetOrCreate(
				r.Context(),
				authUser.ID,
				authUser.Email,
				authUser.FirstName,
				authUser.LastName,
				authUser.Provider,
			)
			if err != nil {
				log.Printf("Failed to get or create user: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), dbUserContextKey, dbUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
