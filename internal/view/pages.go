package view

import (
	"github.com/example/easyride/internal/application"
	"github.com/example/easyride/internal/catalog"
	"github.com/example/easyride/internal/i18n"
)

// Page is the data every template receives. Data holds the page specific
// payload.
type Page struct {
	Title string
	Path  string
	User  *application.User
	Year  int
	Data  any

	name string
}

// NavLink is one entry of the header navigation.
type NavLink struct {
	Label  string
	Path   string
	Active bool
}

var navigation = []NavLink{
	{Label: "Accueil", Path: "/"},
	{Label: "Location", Path: "/rent"},
	{Label: "Carte", Path: "/map"},
	{Label: "Contact", Path: "/contact"},
}

// Nav returns the header links with the current page marked active.
func (p Page) Nav() []NavLink {
	links := make([]NavLink, len(navigation))
	for i, link := range navigation {
		link.Active = link.Path == p.Path
		links[i] = link
	}
	return links
}

// Lang is the document language attribute.
func (p Page) Lang() string { return string(i18n.Lang) }

// Dir is the document direction attribute.
func (p Page) Dir() string { return i18n.Lang.Dir() }

// Name is the page being rendered.
func (p Page) Name() string { return p.name }

// HomeData feeds the landing page.
type HomeData struct {
	Models       []catalog.Model
	Pricing      []catalog.PricingTier
	Testimonials []catalog.Testimonial
}

// Auth modes.
const (
	AuthLogin    = "login"
	AuthRegister = "register"
)

// AuthData feeds the sign-in and sign-up page. Passwords are never echoed
// back.
type AuthData struct {
	Mode   string
	Banner string
	Name   string
	Email  string
	Phone  string
	Age    string
}

// IsRegister reports whether the sign-up variant is shown.
func (d AuthData) IsRegister() bool { return d.Mode == AuthRegister }

// RentData feeds the rental form.
type RentData struct {
	Form     *application.BookingForm
	Scooters []catalog.Scooter
	Stores   []catalog.Store
	Pricing  []catalog.PricingTier
	MinDate  string
}

// MapData feeds the live map.
type MapData struct {
	Store  catalog.Store
	Stores []catalog.Store
}

// ContactData feeds the contact page.
type ContactData struct {
	Form *application.ContactForm
}

// NotFoundData feeds the 404 page.
type NotFoundData struct {
	Path string
}
