package app

import (
	"github.com/aussiebroadwan/hdbdash/internal/dash/render"
	"github.com/aussiebroadwan/hdbdash/pkg/resalesdk"
)

// ============================================================================
// Session
// ============================================================================

type LoginCmd struct {
	Username string `arg:"" help:"Account username."`
	Password string `help:"Password. Read from stdin when omitted." env:"HDB_PASSWORD"`
}

func (c *LoginCmd) Run(rc *runContext) error {
	password, err := rc.app.prompt(c.Password, "Password")
	if err != nil {
		return err
	}

	pair, err := rc.app.client.Login(rc.ctx, c.Username, password)
	if err != nil {
		return err
	}

	if pair.Detail != "" {
		rc.println(pair.Detail)
	}
	rc.println("Logged in as", rc.app.client.State().Snapshot().Username)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(rc *runContext) error {
	if err := rc.app.client.Logout(rc.ctx); err != nil {
		return err
	}
	rc.println("Logged out.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(rc *runContext) error {
	snap := rc.app.client.State().Snapshot()
	if !snap.Authenticated {
		return resalesdk.ErrNotAuthenticated
	}
	return rc.show(snap, func() { rc.println(snap.Username) })
}

// ============================================================================
// Account
// ============================================================================

type SignupCmd struct {
	Username        string `arg:"" help:"New username."`
	Email           string `arg:"" help:"Email address."`
	Password        string `help:"Password. Read from stdin when omitted." env:"HDB_PASSWORD"`
	ConfirmPassword string `help:"Password confirmation. Read from stdin when omitted." name:"confirm-password"`
}

func (c *SignupCmd) Run(rc *runContext) error {
	password, err := rc.app.prompt(c.Password, "Password")
	if err != nil {
		return err
	}
	confirm, err := rc.app.prompt(c.ConfirmPassword, "Confirm password")
	if err != nil {
		return err
	}

	resp, err := rc.app.client.Signup(rc.ctx, resalesdk.SignupRequest{
		Username:        c.Username,
		Email:           c.Email,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}

	rc.println(resp.Detail)
	if snap := rc.app.client.State().Snapshot(); snap.Authenticated {
		rc.println("Logged in as", snap.Username)
	}
	return nil
}

type ProfileCmd struct{}

func (c *ProfileCmd) Run(rc *runContext) error {
	profile, err := rc.app.client.Profile(rc.ctx)
	if err != nil {
		return err
	}
	return rc.show(profile, func() { render.Profile(rc.app.out, profile) })
}

type UpdateProfileCmd struct {
	Username string `help:"New username."`
	Email    string `help:"New email address."`
	Password string `help:"Current password. Read from stdin when omitted." env:"HDB_PASSWORD"`
}

func (c *UpdateProfileCmd) Run(rc *runContext) error {
	password, err := rc.app.prompt(c.Password, "Current password")
	if err != nil {
		return err
	}

	updated, err := rc.app.client.UpdateProfile(rc.ctx, resalesdk.UpdateProfileRequest{
		Username: c.Username,
		Email:    c.Email,
		Password: password,
	})
	if err != nil {
		return err
	}

	return rc.show(updated, func() {
		render.KeyValues(rc.app.out, [][2]string{
			{"Username", updated.Username},
			{"Email", updated.Email},
		})
	})
}

type ForgotPasswordCmd struct {
	Email string `arg:"" help:"Email address of the account."`
}

func (c *ForgotPasswordCmd) Run(rc *runContext) error {
	resp, err := rc.app.client.ForgotPassword(rc.ctx, c.Email)
	if err != nil {
		return err
	}
	rc.println(resp.Detail)
	return nil
}

type ResetPasswordCmd struct {
	Token              string `arg:"" help:"Token from the reset email."`
	NewPassword        string `help:"New password. Read from stdin when omitted." name:"new-password"`
	ConfirmNewPassword string `help:"New password confirmation. Read from stdin when omitted." name:"confirm-new-password"`
}

func (c *ResetPasswordCmd) Run(rc *runContext) error {
	password, err := rc.app.prompt(c.NewPassword, "New password")
	if err != nil {
		return err
	}
	confirm, err := rc.app.prompt(c.ConfirmNewPassword, "Confirm new password")
	if err != nil {
		return err
	}

	resp, err := rc.app.client.ResetPassword(rc.ctx, resalesdk.ResetPasswordRequest{
		Token:              c.Token,
		NewPassword:        password,
		ConfirmNewPassword: confirm,
	})
	if err != nil {
		return err
	}
	rc.println(resp.Detail)
	return nil
}
