package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/deskspace/deskspace/internal/middleware"
	"github.com/deskspace/deskspace/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PropertyHandler struct {
	properties *services.PropertyService
	baseURL    string
}

func NewPropertyHandler(properties *services.PropertyService, baseURL string) *PropertyHandler {
	return &PropertyHandler{properties: properties, baseURL: strings.TrimRight(baseURL, "/")}
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

func isURLEncoded(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationForm)
}

// readPropertyInput normalizes a JSON, urlencoded or multipart body into one
// PropertyInput. Files come from the "images" field of a multipart body.
func readPropertyInput(c *fiber.Ctx) (services.PropertyInput, []services.ImageFile, error) {
	var (
		tree  map[string]any
		files []services.ImageFile
		err   error
	)
	switch {
	case isMultipart(c):
		form, ferr := c.MultipartForm()
		if ferr != nil {
			return services.PropertyInput{}, nil, &services.ValidationError{Message: "Invalid multipart body"}
		}
		tree, err = services.TreeFromForm(url.Values(form.Value))
		files = imageFiles(form.File["images"])
	case isURLEncoded(c):
		values := url.Values{}
		c.Request().PostArgs().VisitAll(func(k, v []byte) {
			values.Add(string(k), string(v))
		})
		tree, err = services.TreeFromForm(values)
	default:
		tree, err = services.TreeFromJSON(c.Body())
	}
	if err != nil {
		return services.PropertyInput{}, nil, err
	}
	in, err := services.NormalizePropertyInput(tree)
	if err != nil {
		return services.PropertyInput{}, nil, err
	}
	return in, files, nil
}

func listQuery(c *fiber.Ctx) (services.ListQuery, error) {
	q := services.ListQuery{
		Location: c.Query("location"),
		Type:     c.Query("type"),
	}
	var err error
	if q.Page, err = intQuery(c, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = intQuery(c, "pageSize"); err != nil {
		return q, err
	}
	if raw := c.Query("admin"); raw != "" {
		if q.Admin, err = strconv.ParseBool(raw); err != nil {
			return q, &services.ValidationError{Field: "admin", Message: "must be true or false"}
		}
	}
	return q, nil
}

// intQuery reads an optional positive integer. Absent means 0 (use default).
func intQuery(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &services.ValidationError{Field: key, Message: "must be a positive integer"}
	}
	return n, nil
}

func (h *PropertyHandler) List(c *fiber.Ctx) error {
	q, err := listQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.properties.List(c.UserContext(), middleware.CurrentSession(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *PropertyHandler) Featured(c *fiber.Ctx) error {
	q, err := listQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	q.Admin = false
	q.Featured = true
	res, err := h.properties.List(c.UserContext(), nil, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *PropertyHandler) ByOwner(c *fiber.Ctx) error {
	q, err := listQuery(c)
	if err != nil {
		return respondError(c, err)
	}
	res, err := h.properties.ByOwner(c.UserContext(), middleware.CurrentSession(c), c.Params("userId"), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *PropertyHandler) Get(c *fiber.Ctx) error {
	p, err := h.properties.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

// Create answers a browser form post with a redirect to the new listing and
// everything else with the created document.
func (h *PropertyHandler) Create(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return respondError(c, services.ErrUnauthenticated)
	}
	in, files, err := readPropertyInput(c)
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.properties.Create(c.UserContext(), sess, in, files)
	if err != nil {
		return respondError(c, err)
	}

	if isMultipart(c) && strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML) {
		return c.Redirect(h.baseURL+"/properties/"+p.ID.Hex(), fiber.StatusSeeOther)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *PropertyHandler) Update(c *fiber.Ctx) error {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return respondError(c, services.ErrUnauthenticated)
	}
	in, files, err := readPropertyInput(c)
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.properties.Update(c.UserContext(), sess, c.Params("id"), in, files)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *PropertyHandler) Delete(c *fiber.Ctx) error {
	if err := h.properties.Delete(c.UserContext(), middleware.CurrentSession(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Property deleted successfully"})
}
