package rest

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/linkcase/linkcase/auth"
	"github.com/linkcase/linkcase/bookmarks"
)

// BookmarksController exposes links and collections, always scoped to the
// authenticated owner.
type BookmarksController struct {
	Logger      Logger
	Links       bookmarks.Links
	Collections bookmarks.Collections
}

func NewBookmarksController(links bookmarks.Links, collections bookmarks.Collections) *BookmarksController {
	return &BookmarksController{
		Logger:      defLogger{},
		Links:       links,
		Collections: collections,
	}
}

// RegisterBookmarkRoutes mounts the bookmark endpoints behind RequireAuth.
func RegisterBookmarkRoutes(app fiber.Router, controller *BookmarksController) {
	guard := RequireAuth()

	app.Get("/links", guard, controller.LinksList)
	app.Post("/links", guard, controller.LinksCreate)
	app.Get("/links/:id", guard, controller.LinksGet)
	app.Put("/links/:id", guard, controller.LinksUpdate)
	app.Delete("/links/:id", guard, controller.LinksDelete)

	app.Get("/collections", guard, controller.CollectionsList)
	app.Post("/collections", guard, controller.CollectionsCreate)
	app.Get("/collections/:id", guard, controller.CollectionsGet)
	app.Put("/collections/:id", guard, controller.CollectionsUpdate)
	app.Delete("/collections/:id", guard, controller.CollectionsDelete)

	app.Put("/collections/:id/links/:linkID", guard, controller.CollectionsAttachLink)
	app.Delete("/collections/:id/links/:linkID", guard, controller.CollectionsDetachLink)
}

type linkPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	Type        string `json:"type"`
}

func (m linkPayload) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.Description, validation.Length(0, 1000)),
		validation.Field(&m.URL, validation.Required, is.URL),
		validation.Field(&m.Image, is.URL),
		validation.Field(&m.Type, validation.Required),
	)
}

func validatedPayload(c *fiber.Ctx, payload interface{ Validate() error }) error {
	if err := c.BodyParser(payload); err != nil {
		return badRequest("malformed payload")
	}
	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid payload").
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"fields": auth.FormatValidationErrorToMap(err)})
	}
	return nil
}

func (b *BookmarksController) LinksList(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	filter := bookmarks.LinkFilter{
		Type:         bookmarks.LinkType(c.Query("type")),
		CollectionID: int64(c.QueryInt("collection")),
		Limit:        c.QueryInt("limit"),
		Offset:       c.QueryInt("offset"),
	}

	records, err := b.Links.ListByUser(c.UserContext(), user.ID, filter)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{"links": records})
}

func (b *BookmarksController) LinksCreate(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	payload := linkPayload{}
	if err := validatedPayload(c, &payload); err != nil {
		return renderError(c, err)
	}

	link, err := b.Links.Create(c.UserContext(), &bookmarks.Link{
		Title:       payload.Title,
		Description: payload.Description,
		URL:         payload.URL,
		Image:       payload.Image,
		Type:        bookmarks.LinkType(payload.Type),
		UserID:      user.ID,
	})
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(link)
}

func (b *BookmarksController) LinksGet(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return renderError(c, badRequest("invalid link id"))
	}

	link, err := b.Links.GetByID(c.UserContext(), user.ID, int64(id))
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(link)
}

func (b *BookmarksController) LinksUpdate(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return renderError(c, badRequest("invalid link id"))
	}

	payload := linkPayload{}
	if err := validatedPayload(c, &payload); err != nil {
		return renderError(c, err)
	}

	link, err := b.Links.Update(c.UserContext(), user.ID, &bookmarks.Link{
		ID:          int64(id),
		Title:       payload.Title,
		Description: payload.Description,
		URL:         payload.URL,
		Image:       payload.Image,
		Type:        bookmarks.LinkType(payload.Type),
	})
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(link)
}

func (b *BookmarksController) LinksDelete(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return renderError(c, badRequest("invalid link id"))
	}

	if err := b.Links.Delete(c.UserContext(), user.ID, int64(id)); err != nil {
		return renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type collectionPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (m collectionPayload) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&m.Description, validation.Length(0, 500)),
	)
}

func (b *BookmarksController) CollectionsList(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	records, err := b.Collections.ListByUser(c.UserContext(), user.ID)
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(fiber.Map{"collections": records})
}

func (b *BookmarksController) CollectionsCreate(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	payload := collectionPayload{}
	if err := validatedPayload(c, &payload); err != nil {
		return renderError(c, err)
	}

	collection, err := b.Collections.Create(c.UserContext(), &bookmarks.Collection{
		Name:        payload.Name,
		Description: payload.Description,
		UserID:      user.ID,
	})
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(collection)
}

func (b *BookmarksController) CollectionsGet(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return renderError(c, badRequest("invalid collection id"))
	}

	collection, err := b.Collections.GetByID(c.UserContext(), user.ID, int64(id))
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(collection)
}

func (b *BookmarksController) CollectionsUpdate(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return renderError(c, badRequest("invalid collection id"))
	}

	payload := collectionPayload{}
	if err := validatedPayload(c, &payload); err != nil {
		return renderError(c, err)
	}

	collection, err := b.Collections.Update(c.UserContext(), user.ID, &bookmarks.Collection{
		ID:          int64(id),
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		return renderError(c, err)
	}

	return c.JSON(collection)
}

func (b *BookmarksController) CollectionsDelete(c *fiber.Ctx) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return renderError(c, badRequest("invalid collection id"))
	}

	if err := b.Collections.Delete(c.UserContext(), user.ID, int64(id)); err != nil {
		return renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (b *BookmarksController) CollectionsAttachLink(c *fiber.Ctx) error {
	return b.membership(c, b.Links.AddToCollection)
}

func (b *BookmarksController) CollectionsDetachLink(c *fiber.Ctx) error {
	return b.membership(c, b.Links.RemoveFromCollection)
}

func (b *BookmarksController) membership(c *fiber.Ctx, op func(ctx context.Context, userID, linkID, collectionID int64) error) error {
	user, ok := Principal(c)
	if !ok {
		return renderError(c, auth.ErrNoCredentials)
	}

	collectionID, err := c.ParamsInt("id")
	if err != nil {
		return renderError(c, badRequest("invalid collection id"))
	}

	linkID, err := c.ParamsInt("linkID")
	if err != nil {
		return renderError(c, badRequest("invalid link id"))
	}

	if err := op(c.UserContext(), user.ID, int64(linkID), int64(collectionID)); err != nil {
		return renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
