package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/easyride/internal/application"
	"github.com/example/easyride/internal/catalog"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewWithClock(func() time.Time { return time.Date(2026, time.June, 2, 0, 0, 0, 0, time.UTC) })
	require.NoError(t, err)
	return r
}

func render(t *testing.T, r *Renderer, name string, page Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, page))
	return buf.String()
}

func TestRenderLayout(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t)
	c := catalog.Default()

	t.Run("anonymous visitor", func(t *testing.T) {
		t.Parallel()
		out := render(t, r, PageHome, Page{Title: "Accueil", Path: "/", Data: HomeData{Pricing: c.Pricing}})

		require.Contains(t, out, `<html lang="fr" dir="ltr">`)
		require.Contains(t, out, `<a href="/" class="active" aria-current="page">Accueil</a>`)
		require.Contains(t, out, `href="/auth"`)
		require.NotContains(t, out, "/auth/logout")
		require.Contains(t, out, "&copy; 2026")
		require.NotContains(t, out, "no value")
	})

	t.Run("signed in visitor", func(t *testing.T) {
		t.Parallel()
		user := &application.User{ID: "user-1", Name: "Demo User"}
		out := render(t, r, PageMap, Page{Title: "Carte", Path: "/map", User: user, Data: MapData{Store: c.MainStore(), Stores: c.Stores}})

		require.Contains(t, out, `<span class="user-name">Demo User</span>`)
		require.Contains(t, out, `action="/auth/logout"`)
		require.Contains(t, out, `<a href="/map" class="active" aria-current="page">Carte</a>`)
	})
}

func TestRenderHome(t *testing.T) {
	t.Parallel()
	c := catalog.Default()

	out := render(t, newTestRenderer(t), PageHome, Page{Title: "Accueil", Path: "/", Data: HomeData{
		Models:       c.Models,
		Pricing:      c.Pricing,
		Testimonials: c.Testimonials,
	}})

	require.Contains(t, out, "100 MAD")
	require.Equal(t, 1, strings.Count(out, `class="badge"`))
	require.Contains(t, out, "EasyRide Performance")
	require.Contains(t, out, "Sophie L.")
}

func TestRenderAuth(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t)

	login := render(t, r, PageAuth, Page{Title: "Connexion", Path: "/auth", Data: AuthData{
		Mode:   AuthLogin,
		Banner: application.MsgInvalidCredentials,
		Email:  "demo@example.com",
	}})
	require.Contains(t, login, `action="/auth/login"`)
	require.Contains(t, login, application.MsgInvalidCredentials)
	require.Contains(t, login, `value="demo@example.com"`)
	require.Contains(t, login, `value=""`)
	require.NotContains(t, login, "no value")

	register := render(t, r, PageAuth, Page{Title: "Inscription", Path: "/auth", Data: AuthData{Mode: AuthRegister, Name: "Amina"}})
	require.Contains(t, register, `action="/auth/register"`)
	require.Contains(t, register, `name="confirmPassword"`)
	require.Contains(t, register, `value="Amina"`)
}

func TestRenderRent(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t)
	c := catalog.Default()

	t.Run("inline field errors", func(t *testing.T) {
		t.Parallel()
		form := application.NewBookingForm(nil)
		form.Draft.ScooterID = "scooter3"
		form.Errors = application.ValidateBooking(form.Draft)

		out := render(t, r, PageRent, Page{Title: "Location", Path: "/rent", Data: RentData{
			Form: form, Scooters: c.Scooters, Stores: c.Stores, Pricing: c.Pricing, MinDate: "2026-06-02",
		}})
		require.Contains(t, out, application.MsgFullNameRequired)
		require.Contains(t, out, application.MsgLocationRequired)
		require.NotContains(t, out, application.MsgScooterRequired)
		require.Contains(t, out, `<option value="scooter3" selected>`)
		require.Contains(t, out, `min="2026-06-02"`)
	})

	t.Run("confirmation", func(t *testing.T) {
		t.Parallel()
		form := application.NewBookingForm(nil)
		form.State = application.FormSuccess
		form.Confirmation = &application.BookingConfirmation{
			OrderID:     "order-7",
			ScooterName: "Scooter 1",
			QRCodeURL:   "https://api.qrserver.com/v1/create-qr-code/?size=150x150&data=order-7",
		}

		out := render(t, r, PageRent, Page{Title: "Location", Path: "/rent", Data: RentData{Form: form, Pricing: c.Pricing}})
		require.Contains(t, out, `<strong class="order-id">order-7</strong>`)
		require.Contains(t, out, `src="https://api.qrserver.com/v1/create-qr-code/?size=150x150&amp;data=order-7"`)
		require.NotContains(t, out, `action="/rent"`)
	})
}

func TestRenderMap(t *testing.T) {
	t.Parallel()
	c := catalog.Default()

	out := render(t, newTestRenderer(t), PageMap, Page{Title: "Carte", Path: "/map", Data: MapData{Store: c.MainStore(), Stores: c.Stores}})

	require.Contains(t, out, "34.6819")
	require.Contains(t, out, "-1.9116")
	require.Contains(t, out, `"Magasin principal Easy-ride"`)
	require.Contains(t, out, "/api/distance")
	require.Contains(t, out, "#map { height")
}

func TestRenderContact(t *testing.T) {
	t.Parallel()
	r := newTestRenderer(t)

	form := application.NewContactForm(nil)
	form.Message.Message = "<script>alert(1)</script>"
	form.Errors = application.ValidateContact(form.Message)
	out := render(t, r, PageContact, Page{Title: "Contact", Path: "/contact", Data: ContactData{Form: form}})
	require.Contains(t, out, application.MsgNameRequired)
	require.Contains(t, out, "&lt;script&gt;alert(1)&lt;/script&gt;")

	done := application.NewContactForm(nil)
	done.State = application.FormSuccess
	out = render(t, r, PageContact, Page{Title: "Contact", Path: "/contact", Data: ContactData{Form: done}})
	require.Contains(t, out, "Message envoyé avec succès!")
}

func TestRenderNotFound(t *testing.T) {
	t.Parallel()

	out := render(t, newTestRenderer(t), PageNotFound, Page{Title: "Page introuvable", Path: "/nope", Data: NotFoundData{Path: "/nope"}})
	require.Contains(t, out, "404")
	require.Contains(t, out, "<code>/nope</code>")
	require.NotContains(t, out, `aria-current="page"`)
}

func TestRenderUnknownPage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := newTestRenderer(t).Render(&buf, "admin", Page{})
	require.Error(t, err)
	require.Zero(t, buf.Len())
}

func TestDict(t *testing.T) {
	t.Parallel()

	m, err := dict("Label", "OK", "Disabled", true)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"Label": "OK", "Disabled": true}, m)

	_, err = dict("Label")
	require.Error(t, err)
	_, err = dict(1, "x")
	require.Error(t, err)
}
