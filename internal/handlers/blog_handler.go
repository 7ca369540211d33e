package handlers

import (
	"errors"

	"jurnal/internal/middleware"
	"jurnal/internal/models"
	"jurnal/internal/services"

	"github.com/gofiber/fiber/v2"
)

var errNotAuthor = errors.New("post belongs to another user")

// BlogHandler handles HTTP requests for blog posts.
type BlogHandler struct {
	service *services.BlogService
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(service *services.BlogService) *BlogHandler {
	return &BlogHandler{
		service: service,
	}
}

// postForm is the body of the add, edit and delete forms.
type postForm struct {
	BlogID string `form:"blog_id"`
	Title  string `form:"title"`
	Body   string `form:"body"`
}

// RegisterRoutes registers the blog routes with the Fiber app. Everything
// except the post list requires a signed-in user.
func (h *BlogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/home", h.HandleHome)

	signedIn := middleware.RequireIdentity()
	router.Post("/home", signedIn, h.HandleDeletePost)
	router.Post("/addBlog", signedIn, h.HandleAddPost)
	router.Post("/updateBlog", signedIn, h.HandleEditPage)
	router.Post("/uploadUpdate", signedIn, h.HandleUpdatePost)
}

// HandleHome renders every post along with the acting identity.
func (h *BlogHandler) HandleHome(c *fiber.Ctx) error {
	posts, err := h.service.ListAll(c.UserContext())
	if err != nil {
		requestLog(c).WithError(err).Error("Error listing posts")
		return c.Status(fiber.StatusInternalServerError).SendString("Error: Could not load posts.")
	}
	return c.Render("index", fiber.Map{
		"UserID": middleware.UserID(c),
		"Posts":  posts,
	})
}

// HandleAddPost creates a post authored by the acting identity.
func (h *BlogHandler) HandleAddPost(c *fiber.Ctx) error {
	var form postForm
	if err := c.BodyParser(&form); err != nil {
		requestLog(c).WithError(err).Warn("Error parsing post form")
		return c.Status(fiber.StatusBadRequest).SendString("Error: Could not add post.")
	}

	userID := middleware.UserID(c)
	if err := h.service.Create(c.UserContext(), userID, form.Title, form.Body); err != nil {
		status := fiber.StatusBadRequest
		entry := requestLog(c).WithError(err).WithField("user_id", userID)
		if errors.Is(err, services.ErrInvalidInput) || errors.Is(err, services.ErrCreatorNotFound) {
			entry.Warn("Post rejected")
		} else {
			status = fiber.StatusInternalServerError
			entry.Error("Error creating post")
		}
		return c.Status(status).SendString("Error: Could not add post.")
	}
	return c.Redirect("/home")
}

// HandleEditPage renders the edit form pre-filled with the post.
func (h *BlogHandler) HandleEditPage(c *fiber.Ctx) error {
	var form postForm
	if err := c.BodyParser(&form); err != nil {
		requestLog(c).WithError(err).Warn("Error parsing edit form")
		return c.Status(fiber.StatusBadRequest).SendString("Error: Could not find post.")
	}

	post, err := h.authoredPost(c, form.BlogID)
	if err != nil {
		return h.postError(c, err, "Error: Could not find post.")
	}
	return c.Render("update", fiber.Map{
		"UserID": middleware.UserID(c),
		"Post":   post,
	})
}

// HandleUpdatePost overwrites the title and body of a post.
func (h *BlogHandler) HandleUpdatePost(c *fiber.Ctx) error {
	var form postForm
	if err := c.BodyParser(&form); err != nil {
		requestLog(c).WithError(err).Warn("Error parsing update form")
		return c.Status(fiber.StatusBadRequest).SendString("Error: Could not update post.")
	}

	if _, err := h.authoredPost(c, form.BlogID); err != nil {
		return h.postError(c, err, "Error: Could not update post.")
	}
	if err := h.service.Update(c.UserContext(), form.BlogID, form.Title, form.Body); err != nil {
		return h.postError(c, err, "Error: Could not update post.")
	}
	return c.Redirect("/home")
}

// HandleDeletePost removes a post.
func (h *BlogHandler) HandleDeletePost(c *fiber.Ctx) error {
	var form postForm
	if err := c.BodyParser(&form); err != nil {
		requestLog(c).WithError(err).Warn("Error parsing delete form")
		return c.Status(fiber.StatusBadRequest).SendString("Error: Could not delete post.")
	}

	if _, err := h.authoredPost(c, form.BlogID); err != nil {
		return h.postError(c, err, "Error: Could not delete post.")
	}
	if err := h.service.Delete(c.UserContext(), form.BlogID); err != nil {
		return h.postError(c, err, "Error: Could not delete post.")
	}
	return c.Redirect("/home")
}

// authoredPost fetches the post and checks that the acting identity wrote it.
func (h *BlogHandler) authoredPost(c *fiber.Ctx, blogID string) (*models.BlogPost, error) {
	post, err := h.service.GetByID(c.UserContext(), blogID)
	if err != nil {
		return nil, err
	}
	if post.CreatorUserID != middleware.UserID(c) {
		return nil, errNotAuthor
	}
	return post, nil
}

// postError maps a blog service error to a status and writes msg as plain text.
func (h *BlogHandler) postError(c *fiber.Ctx, err error, msg string) error {
	entry := requestLog(c).WithError(err).WithField("user_id", middleware.UserID(c))

	var status int
	switch {
	case errors.Is(err, errNotAuthor):
		entry.Warn("Post belongs to another user")
		return c.Status(fiber.StatusForbidden).SendString("Error: You can only change your own posts.")
	case errors.Is(err, services.ErrPostNotFound), errors.Is(err, services.ErrInvalidPostID):
		status = fiber.StatusNotFound
		entry.Warn("Post not found")
	case errors.Is(err, services.ErrInvalidInput):
		status = fiber.StatusBadRequest
		entry.Warn("Post rejected")
	default:
		status = fiber.StatusInternalServerError
		entry.Error("Error handling post")
	}
	return c.Status(status).SendString(msg)
}
