package accountstore

import (
	"context"
	"errors"

	"github.com/dalemusser/studyhub/internal/app/directory"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/domain/domainerr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fetcher implements auth.UserFetcher on top of any Accounts port.
type Fetcher struct {
	accounts directory.Accounts
}

func NewFetcher(accounts directory.Accounts) *Fetcher {
	return &Fetcher{accounts: accounts}
}

// FetchSessionUser returns (nil, nil) when the account no longer exists so
// the session middleware treats the request as anonymous.
func (f *Fetcher) FetchSessionUser(ctx context.Context, id primitive.ObjectID) (*auth.SessionUser, error) {
	a, err := f.accounts.GetByID(ctx, id)
	if errors.Is(err, domainerr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &auth.SessionUser{ID: a.ID.Hex(), Nickname: a.Nickname, Email: a.Email}, nil
}
