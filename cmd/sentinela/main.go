package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/sentinela-app/sentinela-go/internal/app/auth"
	"github.com/sentinela-app/sentinela-go/internal/app/duplicate"
	"github.com/sentinela-app/sentinela-go/internal/app/forces"
	"github.com/sentinela-app/sentinela-go/internal/app/media"
	"github.com/sentinela-app/sentinela-go/internal/app/people"
	"github.com/sentinela-app/sentinela-go/internal/app/register"
	"github.com/sentinela-app/sentinela-go/internal/app/upload"
	"github.com/sentinela-app/sentinela-go/internal/app/users"
	"github.com/sentinela-app/sentinela-go/internal/client"
	"github.com/sentinela-app/sentinela-go/internal/config"
	"github.com/sentinela-app/sentinela-go/internal/domain/model"
	"github.com/sentinela-app/sentinela-go/internal/infra/metrics"
	"github.com/sentinela-app/sentinela-go/internal/logging"
	"github.com/sentinela-app/sentinela-go/internal/session"
	"github.com/sentinela-app/sentinela-go/internal/validation"
	"github.com/sentinela-app/sentinela-go/pkg/apierrors"
	"github.com/sentinela-app/sentinela-go/pkg/cache"
	"github.com/sentinela-app/sentinela-go/pkg/resilience"
	"github.com/sentinela-app/sentinela-go/pkg/telemetry"
)

const usage = `Sentinela - cliente do registro

Uso: sentinela <comando> [flags]

Comandos:
  login        Autentica e persiste a sessão
  logout       Encerra a sessão local
  whoami       Mostra o usuário autenticado
  list         Lista pessoas cadastradas
  show         Mostra uma pessoa e suas mídias
  register     Cria um cadastro a partir de um arquivo de formulário
  edit         Edita um cadastro a partir de um arquivo de formulário
  check-cpf    Verifica se um CPF já possui cadastro
  face-search  Busca pessoas por similaridade facial
  users        Administra contas de usuário
  forces       Lista as forças cadastradas
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro na inicialização: %v\n", err)
		os.Exit(1)
	}
	defer app.shutdown(ctx)

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		var fieldErrs validation.FieldErrors
		if errors.As(err, &fieldErrs) {
			for field, msg := range fieldErrs {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
			}
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, apierrors.FormatMessage(err))
		os.Exit(1)
	}
}

// appContext agrupa os serviços montados na inicialização
type appContext struct {
	cfg       *config.Config
	logger    *zap.Logger
	sess      *session.Session
	cache     cache.Cache
	validator *validation.Validator
	tracer    *telemetry.TracerProvider

	auth     *auth.Service
	people   *people.Service
	media    *media.Service
	uploads  *upload.Service
	users    *users.Service
	forces   *forces.Service
	register *register.Orchestrator
}

func bootstrap(ctx context.Context) (*appContext, error) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	var tracer *telemetry.TracerProvider
	if cfg.Tracing.Enabled {
		tracer, err = telemetry.NewTracerProvider(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SamplingRatio, logger)
		if err != nil {
			logger.Warn("rastreamento indisponível", zap.Error(err))
		}
	}

	var m *metrics.ClientMetrics
	if cfg.Metrics.Enabled {
		m = metrics.NewClientMetrics(nil)
	}

	appCache := buildCache(cfg, m, logger)

	store, err := session.NewSQLiteStore(cfg.Session.StorePath, logger)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir armazenamento da sessão: %w", err)
	}

	sess := session.New(store, logger)
	if err := sess.Initialize(ctx); err != nil {
		logger.Warn("erro ao restaurar sessão", zap.Error(err))
	}
	sess.OnExpired(func() {
		fmt.Fprintln(os.Stderr, apierrors.SessionExpiredMsg)
	})

	var breaker *resilience.CircuitBreaker
	if cfg.Resilience.CircuitBreaker {
		breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:            "sentinela-api",
			MaxRequestsFail: cfg.Resilience.MaxRequestsFail,
			Interval:        cfg.Resilience.Interval,
			Timeout:         cfg.Resilience.Timeout,
		}, logger, m)
	}

	c := client.New(cfg.API, sess, logger, m, stderrNotifier{}, breaker)
	v := validation.New()

	peopleSvc := people.NewService(c, appCache, cfg.Cache.TTL, cfg.Cache.CPFLookupTTL, logger)
	mediaSvc := media.NewService(c, appCache, cfg.Cache.TTL, logger)
	uploadSvc := upload.NewService(c, cfg.Upload, m, logger)

	return &appContext{
		cfg:       cfg,
		logger:    logger,
		sess:      sess,
		cache:     appCache,
		validator: v,
		tracer:    tracer,
		auth:      auth.NewService(c, sess, v, logger),
		people:    peopleSvc,
		media:     mediaSvc,
		uploads:   uploadSvc,
		users:     users.NewService(c, appCache, v, cfg.Cache.TTL, logger),
		forces:    forces.NewService(c, appCache, cfg.Cache.TTL, logger),
		register:  register.New(uploadSvc, peopleSvc, mediaSvc, v, logger),
	}, nil
}

func buildCache(cfg *config.Config, m *metrics.ClientMetrics, logger *zap.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		return cache.NewNoOpCache()
	}
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.Redis.Address, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis indisponível, usando cache em memória", zap.Error(err))
		} else {
			return redisCache
		}
	}
	return cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute, m, logger)
}

func (a *appContext) shutdown(ctx context.Context) {
	if a.tracer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		a.tracer.Shutdown(shutdownCtx)
	}
	_ = a.logger.Sync()
}

// stderrNotifier é o destino das notificações na interface de linha de comando
type stderrNotifier struct{}

func (stderrNotifier) Error(msg string)   { fmt.Fprintln(os.Stderr, msg) }
func (stderrNotifier) Success(msg string) { fmt.Fprintln(os.Stderr, msg) }

func (a *appContext) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		a.auth.Logout(ctx)
		fmt.Println("Sessão encerrada")
		return nil
	case "whoami":
		return a.cmdWhoami(ctx)
	case "list":
		return a.cmdList(ctx, args)
	case "show":
		return a.cmdShow(ctx, args)
	case "register":
		return a.cmdRegister(ctx, args)
	case "edit":
		return a.cmdEdit(ctx, args)
	case "check-cpf":
		return a.cmdCheckCPF(ctx, args)
	case "face-search":
		return a.cmdFaceSearch(ctx, args)
	case "users":
		return a.cmdUsers(ctx, args)
	case "forces":
		return a.cmdForces(ctx)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("comando desconhecido: %s", command)
	}
}

func (a *appContext) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "E-mail da conta")
	password := fs.String("password", "", "Senha da conta")
	_ = fs.Parse(args)

	user, err := a.auth.Login(ctx, model.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("Autenticado como %s (%s)\n", user.Name, user.Role)
	return nil
}

func (a *appContext) cmdWhoami(ctx context.Context) error {
	user, err := a.auth.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\nPerfil: %s\n", user.Name, user.Email, user.Role)
	if user.ForceName != "" {
		fmt.Printf("Força: %s\n", user.ForceName)
	}
	return nil
}

func (a *appContext) cmdList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	name := fs.String("name", "", "Filtro por nome")
	cpf := fs.String("cpf", "", "Filtro por CPF")
	page := fs.Int("page", 1, "Página")
	limit := fs.Int("limit", 10, "Itens por página")
	_ = fs.Parse(args)

	result, err := a.people.List(ctx, model.SearchFilters{
		FullName: *name,
		CPF:      validation.CleanCPF(*cpf),
		Page:     *page,
		Limit:    *limit,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOME\tCPF\tMANDADO")
	for _, p := range result.Data {
		warrant := "-"
		if p.HasWarrant() {
			warrant = p.WarrantStatus
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.FullName, validation.FormatCPF(p.CPF), warrant)
	}
	w.Flush()
	fmt.Printf("Página %d de %d (%d registros)\n", result.Page, result.TotalPages, result.Total)
	return nil
}

func (a *appContext) cmdShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	id := fs.Int64("id", 0, "ID da pessoa")
	_ = fs.Parse(args)

	person, err := a.people.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	medias, err := a.media.ListByPerson(ctx, *id)
	if err != nil {
		return err
	}

	out, _ := json.MarshalIndent(struct {
		Person *model.Person `json:"person"`
		Media  []model.Media `json:"media"`
	}{person, medias}, "", "  ")
	fmt.Println(string(out))
	return nil
}

func (a *appContext) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	formPath := fs.String("file", "", "Arquivo JSON do formulário")
	_ = fs.Parse(args)

	form, err := loadForm(*formPath)
	if err != nil {
		return err
	}

	person, err := a.register.Create(ctx, *form)
	if err != nil {
		return reportSaveError(err)
	}
	fmt.Printf("Cadastro criado: %d\n", person.ID)
	return nil
}

func (a *appContext) cmdEdit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.Int64("id", 0, "ID da pessoa")
	formPath := fs.String("file", "", "Arquivo JSON do formulário")
	_ = fs.Parse(args)

	person, err := a.people.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	medias, err := a.media.ListByPerson(ctx, *id)
	if err != nil {
		return err
	}

	form, err := loadForm(*formPath)
	if err != nil {
		return err
	}

	updated, err := a.register.Update(ctx, *form, register.Existing{Person: *person, Media: medias})
	if err != nil {
		return reportSaveError(err)
	}
	fmt.Printf("Cadastro atualizado: %d\n", updated.ID)
	return nil
}

// reportSaveError distingue a falha total da parcial: na parcial a pessoa
// existe e o operador precisa saber que as mídias ficaram incompletas
func reportSaveError(err error) error {
	var saveErr *register.SaveError
	if errors.As(err, &saveErr) && saveErr.Stage == register.StageMedia {
		fmt.Fprintf(os.Stderr, "Pessoa %d salva, mas parte das mídias falhou. Revise o cadastro.\n", saveErr.PersonID)
	}
	return err
}

func (a *appContext) cmdCheckCPF(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check-cpf", flag.ExitOnError)
	cpf := fs.String("cpf", "", "CPF a verificar")
	ignoreID := fs.Int64("ignore-id", 0, "ID a desconsiderar (modo edição)")
	_ = fs.Parse(args)

	cleaned := validation.CleanCPF(*cpf)
	if !validation.ValidCPF(cleaned) {
		return fmt.Errorf("CPF inválido: %s", *cpf)
	}

	watcher := duplicate.NewWatcher(a.people, a.cfg.DuplicateCheck.Debounce, *ignoreID, a.logger)
	defer watcher.Close()

	watcher.Input(cleaned)
	select {
	case result := <-watcher.Results():
		if result.Err != nil {
			return result.Err
		}
		if result.IsDuplicate {
			fmt.Printf("CPF já cadastrado: %s (ID %d)\n", result.Match.FullName, result.Match.ID)
		} else {
			fmt.Println("CPF sem cadastro")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *appContext) cmdFaceSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("face-search", flag.ExitOnError)
	photoPath := fs.String("file", "", "Foto de referência")
	limit := fs.Int("limit", 10, "Máximo de resultados")
	threshold := fs.Float64("threshold", 0.5, "Similaridade mínima (0 a 1)")
	_ = fs.Parse(args)

	photo, err := os.Open(*photoPath)
	if err != nil {
		return fmt.Errorf("erro ao abrir foto: %w", err)
	}
	defer photo.Close()

	matches, err := a.people.SearchByFace(ctx, photo, filepath.Base(*photoPath), *limit, *threshold)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOME\tSIMILARIDADE\tCONFIANÇA")
	for _, match := range matches {
		fmt.Fprintf(w, "%d\t%s\t%.0f%%\t%s\n",
			match.Person.ID, match.Person.FullName, match.Similarity*100, match.Confidence())
	}
	return w.Flush()
}

func (a *appContext) cmdUsers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: sentinela users <list|create|update|toggle|delete> [flags]")
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("users list", flag.ExitOnError)
		forceID := fs.Int64("force-id", 0, "Filtro por força")
		_ = fs.Parse(args[1:])

		result, err := a.users.List(ctx, model.UserFilters{ForceID: *forceID, Page: 1, Limit: 50})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNOME\tE-MAIL\tPERFIL\tATIVO")
		for _, u := range result.Data {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Role, u.IsActive)
		}
		return w.Flush()

	case "create":
		fs := flag.NewFlagSet("users create", flag.ExitOnError)
		email := fs.String("email", "", "E-mail")
		password := fs.String("password", "", "Senha numérica (6 a 12 dígitos)")
		name := fs.String("name", "", "Nome")
		role := fs.String("role", string(model.RoleUsuario), "Perfil")
		forceID := fs.Int64("force-id", 0, "Força vinculada")
		_ = fs.Parse(args[1:])

		user, err := a.users.Create(ctx, model.CreateUserInput{
			Email:    *email,
			Password: *password,
			Name:     *name,
			Role:     model.Role(*role),
			ForceID:  *forceID,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Usuário criado: %d\n", user.ID)
		return nil

	case "update":
		fs := flag.NewFlagSet("users update", flag.ExitOnError)
		id := fs.Int64("id", 0, "ID do usuário")
		email := fs.String("email", "", "Novo e-mail")
		name := fs.String("name", "", "Novo nome")
		role := fs.String("role", "", "Novo perfil")
		forceID := fs.Int64("force-id", 0, "Nova força")
		_ = fs.Parse(args[1:])

		user, err := a.users.Update(ctx, *id, model.UpdateUserInput{
			Email:   *email,
			Name:    *name,
			Role:    model.Role(*role),
			ForceID: *forceID,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Usuário atualizado: %d\n", user.ID)
		return nil

	case "toggle":
		fs := flag.NewFlagSet("users toggle", flag.ExitOnError)
		id := fs.Int64("id", 0, "ID do usuário")
		active := fs.Bool("active", true, "Novo estado")
		_ = fs.Parse(args[1:])

		user, err := a.users.ToggleStatus(ctx, *id, *active)
		if err != nil {
			return err
		}
		fmt.Printf("Usuário %d ativo=%t\n", user.ID, user.IsActive)
		return nil

	case "delete":
		fs := flag.NewFlagSet("users delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "ID do usuário")
		_ = fs.Parse(args[1:])

		if err := a.users.Delete(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("Usuário removido: %d\n", *id)
		return nil

	default:
		return fmt.Errorf("subcomando desconhecido: users %s", args[0])
	}
}

func (a *appContext) cmdForces(ctx context.Context) error {
	result, err := a.forces.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOME")
	for _, force := range result {
		fmt.Fprintf(w, "%d\t%s\n", force.ID, force.Name)
	}
	return w.Flush()
}

// formFile é o esqueleto JSON aceito pelos comandos register e edit. Campos
// *Path apontam para arquivos locais que viram binários pendentes.
type formFile struct {
	register.Form
	FacePhotoPath     string `json:"facePhotoPath,omitempty"`
	FullBodyPhotoPath string `json:"fullBodyPhotoPath,omitempty"`
	WarrantFilePath   string `json:"warrantFilePath,omitempty"`
	Tattoos           []struct {
		PhotoPath   string `json:"photoPath,omitempty"`
		URL         string `json:"url,omitempty"`
		Location    string `json:"location,omitempty"`
		Description string `json:"description,omitempty"`
	} `json:"tattoos,omitempty"`
}

func loadForm(path string) (*register.Form, error) {
	if path == "" {
		return nil, errors.New("flag -file é obrigatória")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler formulário: %w", err)
	}

	var ff formFile
	if err := json.Unmarshal(raw, &ff); err != nil {
		return nil, fmt.Errorf("formulário malformado: %w", err)
	}

	form := ff.Form
	if form.FacePhoto, err = loadPending(ff.FacePhotoPath); err != nil {
		return nil, err
	}
	if form.FullBodyPhoto, err = loadPending(ff.FullBodyPhotoPath); err != nil {
		return nil, err
	}
	if form.WarrantFile, err = loadPending(ff.WarrantFilePath); err != nil {
		return nil, err
	}

	form.Tattoos = nil
	for _, t := range ff.Tattoos {
		entry := register.TattooEntry{
			URL:         t.URL,
			Location:    t.Location,
			Description: t.Description,
		}
		if entry.Photo, err = loadPending(t.PhotoPath); err != nil {
			return nil, err
		}
		form.Tattoos = append(form.Tattoos, entry)
	}
	return &form, nil
}

func loadPending(path string) (*register.PendingFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo %s: %w", path, err)
	}
	return &register.PendingFile{Name: filepath.Base(path), Data: data}, nil
}
