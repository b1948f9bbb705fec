package httpapi

import (
	"errors"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/favorites"
	"github.com/i474232898/weather-dashboard/internal/geolocation"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// Deps are the collaborators the routes call into.
type Deps struct {
	Sessions  *weather.Registry
	Favorites *favorites.List
	// DefaultLocation answers searches for "my location" made without
	// browser-reported coordinates.
	DefaultLocation geolocation.Locator
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	sessions := v1.Group("/sessions")

	sessions.Post("/", func(c *fiber.Ctx) error {
		id, s := deps.Sessions.Create()
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    id,
			"state": s.State(),
		})
	})

	sessions.Get("/:id", withSession(deps.Sessions, func(c *fiber.Ctx, s *weather.Session) error {
		return c.JSON(s.State())
	}))

	sessions.Delete("/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := validate.Var(id, "required,uuid4"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
		}
		if err := deps.Sessions.Delete(id); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	sessions.Post("/:id/search/city", withSession(deps.Sessions, func(c *fiber.Ctx, s *weather.Session) error {
		var req citySearchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		// Blank names are reported through the session state, not as a 400.
		return c.JSON(s.SearchByCity(c.UserContext(), req.City))
	}))

	sessions.Post("/:id/search/location", withSession(deps.Sessions, func(c *fiber.Ctx, s *weather.Session) error {
		var req locationSearchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(s.SearchByGeolocation(c.UserContext(), req.locator()))
	}))

	sessions.Post("/:id/search/default-location", withSession(deps.Sessions, func(c *fiber.Ctx, s *weather.Session) error {
		loc := deps.DefaultLocation
		if loc == nil {
			loc = geolocation.Static{}
		}
		return c.JSON(s.SearchByGeolocation(c.UserContext(), loc))
	}))

	sessions.Post("/:id/refresh", withSession(deps.Sessions, func(c *fiber.Ctx, s *weather.Session) error {
		return c.JSON(s.Refresh(c.UserContext()))
	}))

	favs := v1.Group("/favorites")

	favs.Get("/", func(c *fiber.Ctx) error {
		cities, err := deps.Favorites.All(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load favorites")
		}
		return c.JSON(fiber.Map{"favorites": cities})
	})

	favs.Get("/:city", withCity(func(c *fiber.Ctx, city string) error {
		ok, err := deps.Favorites.Contains(c.UserContext(), city)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load favorites")
		}
		return c.JSON(fiber.Map{"city": city, "favorite": ok})
	}))

	favs.Put("/:city", withCity(func(c *fiber.Ctx, city string) error {
		cities, err := deps.Favorites.Add(c.UserContext(), city)
		return favoritesResponse(c, cities, err)
	}))

	favs.Delete("/:city", withCity(func(c *fiber.Ctx, city string) error {
		cities, err := deps.Favorites.Remove(c.UserContext(), city)
		return favoritesResponse(c, cities, err)
	}))

	favs.Post("/:city/toggle", withCity(func(c *fiber.Ctx, city string) error {
		cities, err := deps.Favorites.Toggle(c.UserContext(), city)
		return favoritesResponse(c, cities, err)
	}))
}

// citySearchRequest is the body of a search by name.
type citySearchRequest struct {
	City string `json:"city"`
}

// locationSearchRequest carries either browser coordinates or the
// geolocation error the browser reported instead.
type locationSearchRequest struct {
	Lat   *float64 `json:"lat" validate:"required_without=Error,omitempty,gte=-90,lte=90"`
	Lon   *float64 `json:"lon" validate:"required_without=Error,omitempty,gte=-180,lte=180"`
	Error string   `json:"error"`
}

func (r locationSearchRequest) locator() geolocation.Reported {
	if r.Error != "" || r.Lat == nil || r.Lon == nil {
		return geolocation.Reported{Code: geolocation.ParseCode(r.Error)}
	}
	return geolocation.Reported{
		Coordinates: &weather.Coordinates{Lat: *r.Lat, Lon: *r.Lon},
	}
}

func withSession(reg *weather.Registry, h func(*fiber.Ctx, *weather.Session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := validate.Var(id, "required,uuid4"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
		}
		s, err := reg.Get(id)
		if err != nil {
			if errors.Is(err, weather.ErrSessionNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return err
		}
		return h(c, s)
	}
}

func withCity(h func(*fiber.Ctx, string) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		city, err := url.PathUnescape(c.Params("city"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid city")
		}
		if err := validate.Var(city, "required"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "city is required")
		}
		return h(c, city)
	}
}

func favoritesResponse(c *fiber.Ctx, cities []string, err error) error {
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update favorites")
	}
	return c.JSON(fiber.Map{"favorites": cities})
}
