package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jon4hz/oktasim/internal/api/models"
	"github.com/jon4hz/oktasim/internal/directory"
	"github.com/jon4hz/oktasim/internal/gravatar"
)

const (
	msgWelcome          = "Welcome to the Okta Simulation API!"
	msgUserCreated      = "User created successfully!"
	msgUserDeleted      = "User deleted successfully!"
	msgNotFound         = "Not found"
	msgMethodNotAllowed = "Method not allowed"
)

type Handler struct {
	directory *directory.Service
	avatars   *gravatar.Resolver
}

// New creates a handler. avatars may be nil.
func New(dir *directory.Service, avatars *gravatar.Resolver) *Handler {
	return &Handler{
		directory: dir,
		avatars:   avatars,
	}
}

// Home returns the welcome message.
func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{Message: msgWelcome})
}

// CreateUser provisions a new user from the JSON body.
func (h *Handler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		writeError(c, bindError(err))
		return
	}

	user, err := h.directory.Provision(c.Request.Context(), directory.ProvisionInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateUserResponse{
		Message: msgUserCreated,
		User:    models.ToUser(*user, h.avatars),
	})
}

// ListUsers returns every user.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.directory.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserListResponse{
		Users: models.ToUsers(users, h.avatars),
	})
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c.Param("id"))
	if !ok {
		writeError(c, &directory.Error{Kind: directory.KindNotFound, Message: directory.MsgUserNotFound})
		return
	}

	user, err := h.directory.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserResponse{User: models.ToUser(*user, h.avatars)})
}

// DeleteUser deprovisions the user with the given ID.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseUserID(c.Param("id"))
	if !ok {
		writeError(c, &directory.Error{Kind: directory.KindNotFound, Message: directory.MsgUserNotFound})
		return
	}

	if err := h.directory.Deprovision(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: msgUserDeleted})
}

func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{Error: msgNotFound})
}

func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: msgMethodNotAllowed})
}

// parseUserID accepts positive base-10 integers only.
// Anything else cannot name a user, so callers answer 404.
func parseUserID(param string) (uint, bool) {
	id, err := strconv.ParseUint(param, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	uid, err := safecast.Convert[uint](id)
	if err != nil {
		return 0, false
	}
	return uid, true
}

var errTrailingData = errors.New("unexpected data after JSON body")

// bindStrictJSON decodes exactly one JSON value from the body and validates it.
// gin's ShouldBindJSON stops after the first value and would accept trailing garbage.
func bindStrictJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil {
		return io.EOF
	}
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(obj); err != nil {
		return err
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return binding.Validator.ValidateStruct(obj)
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) || errors.Is(err, io.EOF) {
		return directory.InvalidInput(directory.MsgMissingFields, err)
	}
	return directory.InvalidInput(directory.MsgInvalidJSON, err)
}

func statusFor(kind directory.Kind) int {
	switch kind {
	case directory.KindInvalidInput:
		return http.StatusBadRequest
	case directory.KindNotFound:
		return http.StatusNotFound
	case directory.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps an error to its status code and JSON body.
// Internal causes are logged and never sent to the client.
func writeError(c *gin.Context, err error) {
	var de *directory.Error
	if !errors.As(err, &de) {
		de = &directory.Error{Kind: directory.KindInternal, Message: directory.MsgInternal, Cause: err}
	}

	status := statusFor(de.Kind)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", de.Cause)
	} else {
		log.Debug("request rejected", "method", c.Request.Method, "path", c.Request.URL.Path, "error", de)
	}

	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: de.Message})
}
