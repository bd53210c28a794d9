// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Caller identifies the account acting on a request. The zero Caller is an
// anonymous visitor.
type Caller struct {
	AccountID primitive.ObjectID
	Nickname  string
}

// Anonymous reports whether no account is signed in.
func (c Caller) Anonymous() bool { return c.AccountID.IsZero() }

// UserCtx returns the signed-in account's nickname, ObjectID and a found flag.
// If no user is present or the stored ID is malformed, it returns
// "", NilObjectID, false, so ok=true always means a usable ObjectID.
func UserCtx(r *http.Request) (nickname string, accountID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	accountID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed ID in session - fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Nickname, accountID, true
}

// CallerFrom extracts the acting account from the request context.
func CallerFrom(r *http.Request) Caller {
	nickname, id, ok := UserCtx(r)
	if !ok {
		return Caller{}
	}
	return Caller{AccountID: id, Nickname: nickname}
}
