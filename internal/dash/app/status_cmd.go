package app

import (
	"time"

	"github.com/aussiebroadwan/hdbdash/internal/dash/render"
)

type StatusCmd struct{}

type statusReport struct {
	APIURL        string     `json:"api_url"`
	Storage       string     `json:"storage"`
	Sealed        bool       `json:"sealed"`
	StorageError  string     `json:"storage_error,omitempty"`
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	AccessExpires *time.Time `json:"access_expires,omitempty"`
}

func (c *StatusCmd) Run(rc *runContext) error {
	cfg := rc.app.cfg
	snap := rc.app.client.State().Snapshot()

	report := statusReport{
		APIURL:        cfg.API.URL,
		Storage:       cfg.Storage.Driver,
		Sealed:        cfg.Storage.Passphrase != "",
		Authenticated: snap.Authenticated,
		Username:      snap.Username,
	}
	if err := rc.app.store.Ping(rc.ctx); err != nil {
		report.StorageError = err.Error()
	}
	if !snap.AccessExpiresAt.IsZero() {
		exp := snap.AccessExpiresAt
		report.AccessExpires = &exp
	}

	return rc.show(report, func() {
		storage := report.Storage
		if report.Sealed {
			storage += " (sealed)"
		}
		if report.StorageError != "" {
			storage += ": " + report.StorageError
		}

		session := "logged out"
		if report.Authenticated {
			session = "logged in as " + report.Username
		}

		render.KeyValues(rc.app.out, [][2]string{
			{"API", report.APIURL},
			{"Storage", storage},
			{"Session", session},
			{"Access token", rc.app.expiry(snap.AccessExpiresAt)},
		})
	})
}

// expiry describes when the access token lapses relative to now.
func (app *Application) expiry(at time.Time) string {
	if at.IsZero() {
		return "-"
	}

	left := at.Sub(app.clock.Now()).Truncate(time.Second)
	if left <= 0 {
		return "expired (refreshed on next request)"
	}
	return "expires in " + left.String()
}
