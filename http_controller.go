package todo

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// APIController serves the HTTP surface: registration, token exchange, and
// owner-scoped task CRUD.
type APIController struct {
	Logger Logger
	Repo   RepositoryManager
	Auther *Auther
}

type APIControllerOption func(*APIController) *APIController

func NewAPIController(opts ...APIControllerOption) *APIController {
	c := &APIController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in api controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in api controller...")
	}

	return c
}

func (a *APIController) WithLogger(l Logger) *APIController {
	if l != nil {
		a.Logger = l
	}
	return a
}

// RegisterRoutes mounts the HTTP surface. Paths and verbs are fixed for
// compatibility with existing clients; /user/me/ must be registered before
// /user/:id so the literal segment wins.
func RegisterRoutes(app *fiber.App, opts ...APIControllerOption) *APIController {
	controller := NewAPIController(opts...)
	protected := Protected(controller.Auther)

	app.Post("/users/", controller.CreateUser)
	app.Get("/users/", controller.ListUsers)
	app.Get("/user/me/", guarded(protected, controller.Me)...)
	app.Get("/user/:id", controller.ShowUser)
	app.Delete("/users/:id", controller.DeleteUser)
	app.Post("/token", controller.Token)

	app.Post("/users/task/", guarded(protected, controller.CreateTask)...)
	app.Get("/tasks/", guarded(protected, controller.ListTasks)...)
	app.Get("/task/:id/", guarded(protected, controller.ShowTask)...)
	app.Patch("/task/:id/", guarded(protected, controller.UpdateTask)...)
	app.Delete("/tasks/:id", guarded(protected, controller.DeleteTask)...)

	return controller
}

func guarded(protected []fiber.Handler, handler fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(protected)+1)
	out = append(out, protected...)
	return append(out, handler)
}

// CreateUserRequest payload
type CreateUserRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required.Error("username cannot be empty"),
			validation.Length(1, 255),
		),
		validation.Field(
			&r.Password,
			validation.Required.Error("password cannot be empty"),
			validation.Length(1, 100),
		),
	)
}

func (a *APIController) CreateUser(c *fiber.Ctx) error {
	payload := new(CreateUserRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("create user parse payload", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryValidation, "unable to parse request body").
			WithCode(goerrors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest)
	}

	var created *User
	register := NewRegisterUserHandler(a.Repo)
	if err := register.Execute(c.Context(), RegisterUserMessage{
		Username: payload.Username,
		Password: payload.Password,
		OnUser: func(u *User) {
			created = u
		},
	}); err != nil {
		a.Logger.Error("register user", "error", err)
		return err
	}

	return c.JSON(created)
}

func (a *APIController) ListUsers(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", DefaultPageSize)

	users, err := a.Repo.Users().List(c.Context(), skip, limit)
	if err != nil {
		return err
	}

	return c.JSON(users)
}

func (a *APIController) ShowUser(c *fiber.Ctx) error {
	// Ids are opaque; anything unparseable cannot name a user.
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrUserNotFound
	}

	user, err := a.Repo.Users().GetByID(c.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}

	return c.JSON(user)
}

func (a *APIController) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrUserDoesNotExist
	}

	if err := a.Repo.Users().DeleteByID(c.Context(), id); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserDoesNotExist
		}
		return err
	}

	return c.JSON(fiber.Map{"detail": "User deleted successfully!"})
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// TokenResponse is the login response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (a *APIController) Token(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("token parse payload", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryValidation, "unable to parse request body").
			WithCode(goerrors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest)
	}

	token, err := a.Auther.Login(c.Context(), payload.Username, payload.Password)
	if err != nil {
		a.Logger.Error("login", "error", err, "username", payload.Username)
		return err
	}

	return c.JSON(TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (a *APIController) Me(c *fiber.Ctx) error {
	user, ok := UserFromFiber(c)
	if !ok {
		return ErrUnableToValidateCredentials
	}

	return c.JSON(user)
}

// CreateTaskRequest payload. Completed is a pointer so an explicit false is
// distinguishable from an omitted field.
type CreateTaskRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Completed   *bool  `form:"completed" json:"completed"`
}

// Validate will run validation rules
func (r CreateTaskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
	)
}

func (a *APIController) CreateTask(c *fiber.Ctx) error {
	user, ok := UserFromFiber(c)
	if !ok {
		return ErrUnableToValidateCredentials
	}

	payload := new(CreateTaskRequest)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("create task parse payload", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryValidation, "unable to parse request body").
			WithCode(goerrors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest)
	}

	task := &Task{
		Title:       payload.Title,
		Description: payload.Description,
		OwnerID:     user.ID,
	}
	if payload.Completed != nil {
		task.Completed = *payload.Completed
	}

	created, err := a.Repo.Tasks().Create(c.Context(), task)
	if err != nil {
		a.Logger.Error("create task", "error", err)
		return err
	}

	return c.JSON(created)
}

func (a *APIController) ListTasks(c *fiber.Ctx) error {
	user, ok := UserFromFiber(c)
	if !ok {
		return ErrUnableToValidateCredentials
	}

	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", DefaultPageSize)

	records, err := a.Repo.Tasks().ListByOwner(c.Context(), user.ID, skip, limit)
	if err != nil {
		return err
	}

	return c.JSON(records)
}

func (a *APIController) ShowTask(c *fiber.Ctx) error {
	task, err := a.loadOwnedTask(c)
	if err != nil {
		return err
	}

	return c.JSON(task)
}

// UpdateTaskRequest payload; only fields present in the body are applied.
type UpdateTaskRequest struct {
	Title       *string `form:"title" json:"title"`
	Description *string `form:"description" json:"description"`
	Completed   *bool   `form:"completed" json:"completed"`
}

// Validate will run validation rules
func (r UpdateTaskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
	)
}

func (a *APIController) UpdateTask(c *fiber.Ctx) error {
	task, err := a.loadOwnedTask(c)
	if err != nil {
		return err
	}

	payload := new(UpdateTaskRequest)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("update task parse payload", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryValidation, "unable to parse request body").
			WithCode(goerrors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest)
	}

	if payload.Title != nil {
		task.Title = *payload.Title
	}
	if payload.Description != nil {
		task.Description = *payload.Description
	}
	if payload.Completed != nil {
		task.Completed = *payload.Completed
	}

	updated, err := a.Repo.Tasks().Update(c.Context(), task)
	if err != nil {
		a.Logger.Error("update task", "error", err)
		return err
	}

	return c.JSON(updated)
}

func (a *APIController) DeleteTask(c *fiber.Ctx) error {
	task, err := a.loadOwnedTask(c)
	if err != nil {
		return err
	}

	if err := a.Repo.Tasks().DeleteByID(c.Context(), task.ID); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrTaskNotFound
		}
		return err
	}

	return c.JSON(fiber.Map{"detail": "Task was deleted"})
}

// loadOwnedTask resolves the :id param to a task owned by the caller. A
// missing task and someone else's task produce the same not-found error.
func (a *APIController) loadOwnedTask(c *fiber.Ctx) (*Task, error) {
	user, ok := UserFromFiber(c)
	if !ok {
		return nil, ErrUnableToValidateCredentials
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, ErrTaskNotFound
	}

	task, err := a.Repo.Tasks().GetByID(c.Context(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if err := AuthorizeTaskOwnership(user, task); err != nil {
		return nil, err
	}

	return task, nil
}
