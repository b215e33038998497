package ledgersdk

import (
	"context"
	"net/http"
)

// Profiles groups the profile endpoints of the signed-in user.
type Profiles struct{ c *Client }

// Profile returns the profile endpoints.
func (c *Client) Profile() *Profiles { return &Profiles{c: c} }

func (p *Profiles) Get(ctx context.Context) Envelope[Profile] {
	return call[Profile](ctx, p.c, "profile_get", "/auth/profile/me/",
		RequestOptions{}, "Failed to fetch profile", false)
}

func (p *Profiles) Update(ctx context.Context, in ProfileUpdate) Envelope[Profile] {
	return call[Profile](ctx, p.c, "profile_update", "/auth/profile/update/",
		RequestOptions{Method: http.MethodPatch, Body: in}, "Failed to update profile", true)
}

func (p *Profiles) ChangePassword(ctx context.Context, in PasswordChange) Envelope[struct{}] {
	return call[struct{}](ctx, p.c, "profile_change_password", "/auth/profile/change_password/",
		RequestOptions{Method: http.MethodPost, Body: in}, "Failed to change password", true)
}

// DeleteAccount permanently deletes the user's account. The caller should
// log out afterwards.
func (p *Profiles) DeleteAccount(ctx context.Context, in AccountDeletion) Envelope[struct{}] {
	return call[struct{}](ctx, p.c, "profile_delete_account", "/auth/profile/delete_account/",
		RequestOptions{Method: http.MethodDelete, Body: in}, "Failed to delete account", true)
}
