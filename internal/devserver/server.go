// Package devserver serves the storefront API surface from the local
// SQLite store, so a terminal can be developed and demoed without the
// real backend.
package devserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mvgarcia/taproom/internal/localstore"
	"github.com/mvgarcia/taproom/internal/tables"
	"github.com/mvgarcia/taproom/pkg/config"
	"github.com/mvgarcia/taproom/pkg/db/models"
	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
)

// ServerParams wires the dev server dependencies.
type ServerParams struct {
	Store     *localstore.Store
	Sequencer tables.Sequencer
	Logger    *logger.Logger
	Config    config.DevServerConfig
	Registry  *prometheus.Registry
}

type sessionEntry struct {
	user      models.LocalUser
	expiresAt time.Time
}

// Server is the dev stand-in for the storefront backend.
type Server struct {
	store     *localstore.Store
	sequencer tables.Sequencer
	logger    *logger.Logger
	cfg       config.DevServerConfig
	registry  *prometheus.Registry

	mu        sync.Mutex
	sessions  map[string]sessionEntry
	orders    []orderRecord
	favorites map[string]map[string]bool
	reviews   []reviewEntry
	carts     map[string]*cartState
}

// NewServer validates params and builds the dev server.
func NewServer(params ServerParams) (*Server, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if params.Sequencer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sequencer is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	if params.Config.SessionTTL <= 0 {
		params.Config.SessionTTL = 12 * time.Hour
	}
	return &Server{
		store:     params.Store,
		sequencer: params.Sequencer,
		logger:    params.Logger,
		cfg:       params.Config,
		registry:  params.Registry,
		sessions:  make(map[string]sessionEntry),
		favorites: make(map[string]map[string]bool),
		carts:     make(map[string]*cartState),
	}, nil
}

// Router assembles the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(
		recovererMiddleware(s.logger),
		requestIDMiddleware(s.logger),
		loggingMiddleware(s.logger),
		corsMiddleware(s.cfg.AllowedOrigins),
	)

	r.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Post("/login/", s.handleLogin)
	r.Post("/logout/", s.handleLogout)
	r.Post("/usuarios/", s.handleRegister)
	r.Get("/get-user-token/", s.handleCurrentUser)

	r.Route("/produtos", func(r chi.Router) {
		r.Get("/", s.handleListProducts)
		r.Post("/", s.requireAuth(s.handleCreateProduct))
		r.Get("/{slug}/", s.handleGetProduct)
		r.Put("/{slug}/", s.requireAuth(s.handleUpdateProduct))
		r.Delete("/{slug}/", s.requireAuth(s.handleDeleteProduct))
		r.Post("/{slug}/incrementar-estoque/", s.requireAuth(s.handleIncrementStock))
		r.Post("/{slug}/decrementar-estoque/", s.requireAuth(s.handleDecrementStock))
	})

	r.Route("/categorias", func(r chi.Router) {
		r.Get("/", s.handleListCategories)
		r.Post("/", s.requireAuth(s.handleCreateCategory))
		r.Put("/{slug}/", s.requireAuth(s.handleUpdateCategory))
		r.Delete("/{slug}/", s.requireAuth(s.handleDeleteCategory))
	})

	r.Route("/empresas", func(r chi.Router) {
		r.Get("/", s.requireAuth(s.handleListCompanies))
		r.Post("/", s.requireAuth(s.handleCreateCompany))
		r.Put("/{slug}/", s.requireAuth(s.handleUpdateCompany))
		r.Delete("/{slug}/", s.requireAuth(s.handleDeleteCompany))
	})

	r.Route("/notasfiscais", func(r chi.Router) {
		r.Get("/", s.requireAuth(s.handleListInvoices))
		r.Post("/", s.requireAuth(s.handleCreateInvoice))
		r.Delete("/{slug}/", s.requireAuth(s.handleDeleteInvoice))
	})

	r.Route("/mesas", func(r chi.Router) {
		r.Get("/", s.requireAuth(s.handleListTables))
		r.Post("/", s.requireAuth(s.handleCreateTable))
		r.Get("/{slug}/", s.requireAuth(s.handleGetTable))
		r.Delete("/{slug}/", s.requireAuth(s.handleDeleteTable))
		r.Post("/{slug}/adicionar-item/", s.requireAuth(s.handleAddTableItem))
		r.Post("/{slug}/remover-item/", s.requireAuth(s.handleRemoveTableItem))
		r.Post("/{slug}/cancelar-pedido/", s.requireAuth(s.handleCancelTableOrder))
		r.Post("/{slug}/registrar-pagamento/", s.requireAuth(s.handleRecordTablePayment))
	})

	r.Get("/pedidos-search/", s.requireAuth(s.handleSearchOrders))
	r.Route("/pedidos", func(r chi.Router) {
		r.Get("/", s.requireAuth(s.handleListOrders))
		r.Post("/mesa/{slug}/criar/", s.requireAuth(s.handleCreateOrderFromTable))
		r.Post("/carrinho/{slug}/criar/", s.requireAuth(s.handleCreateOrderFromCart))
		r.Put("/{slug}/atualizar-status/", s.requireAuth(s.handleUpdateOrderStatus))
	})

	r.Post("/estoques/", s.requireAuth(s.handleStockOutflow))

	r.Route("/favoritos", func(r chi.Router) {
		r.Get("/", s.requireAuth(s.handleListFavorites))
		r.Post("/adicionar/", s.requireAuth(s.handleAddFavorite))
		r.Delete("/remover/{id}/", s.requireAuth(s.handleRemoveFavorite))
	})

	r.Route("/avaliacoes", func(r chi.Router) {
		r.Get("/produto/{id}/", s.handleListProductReviews)
		r.Get("/media/{id}/", s.handleAverageRating)
		r.Get("/usuario/", s.requireAuth(s.handleListUserReviews))
		r.Post("/criar/", s.requireAuth(s.handleCreateReview))
		r.Put("/editar/{slug}/", s.requireAuth(s.handleUpdateReview))
		r.Delete("/remover/{slug}/", s.requireAuth(s.handleDeleteReview))
	})

	r.Route("/carrinhos", func(r chi.Router) {
		r.Get("/", s.requireAuth(s.handleGetCarts))
		r.Post("/", s.requireAuth(s.handleCreateCart))
		r.Post("/{slug}/adicionar-item/", s.requireAuth(s.handleAddCartItem))
		r.Post("/{slug}/remover-item/", s.requireAuth(s.handleRemoveCartItem))
		r.Put("/{slug}/atualizar-item/", s.requireAuth(s.handleUpdateCartItem))
		r.Post("/{slug}/cancelar-pedido/", s.requireAuth(s.handleClearCart))
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(r.Context(), s.logger, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "local store unreachable"))
		return
	}
	writeSuccess(w, map[string]string{"status": "ok"})
}

// issueToken creates an opaque bearer token for the user.
func (s *Server) issueToken(user models.LocalUser) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = sessionEntry{user: user, expiresAt: time.Now().Add(s.cfg.SessionTTL)}
	s.mu.Unlock()
	return token
}

func (s *Server) userForToken(token string) (models.LocalUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[token]
	if !ok {
		return models.LocalUser{}, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.sessions, token)
		return models.LocalUser{}, false
	}
	return entry.user, true
}

func (s *Server) dropToken(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

type userCtxKey struct{}

// requireAuth rejects calls without a live bearer token and makes the
// user reachable from the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		user, ok := s.userForToken(token)
		if token == "" || !ok {
			writeError(r.Context(), s.logger, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		ctx := s.logger.WithUserID(r.Context(), user.ID.String())
		ctx = context.WithValue(ctx, userCtxKey{}, user)
		next(w, r.WithContext(ctx))
	}
}

// requestUser returns the authenticated user placed by requireAuth.
func requestUser(r *http.Request) models.LocalUser {
	user, _ := r.Context().Value(userCtxKey{}).(models.LocalUser)
	return user
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

// Serve runs the HTTP server until ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
