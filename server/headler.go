package src

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"game-lottery/server/config"
	"game-lottery/server/constant"
	"game-lottery/server/response"
	"game-lottery/server/service"
	"game-lottery/server/utils"
	"github.com/asaskevich/govalidator"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

func NewHTTPServer(lifecycle fx.Lifecycle, mux *http.ServeMux, c config.Configuration, logger *zap.Logger) {
	options := cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "X-CSRF-Token"},
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", c.Server.Port), Handler: options.Handler(mux)}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}

			logger.Info("starting HTTP server", zap.String("addr", srv.Addr))
			go func() {
				if errs := srv.Serve(ln); errs != nil && !errors.Is(errs, http.ErrServerClosed) {
					logger.Error("HTTP server stopped", zap.Error(errs))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// bearerToken looks for the JWT in the Authorization header, the token query
// parameter and the token cookie, in that order.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if token := r.URL.Query().Get("token"); len(token) > 0 {
		return token
	}
	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth rejects requests without a valid token and exposes the caller
// address to the next handler through HeaderCustomUser.
func RequireAuth(next RequestHandler) RequestHandler {
	return func(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
		strToken := bearerToken(r)
		if len(strToken) == 0 {
			response.Fail(constant.Code10012, constant.UserNotLogin, w)
			return
		}

		claims, err := utils.ParseJWT(c.JwtSecret, strToken)
		if err != nil {
			response.Fail(constant.Code10012, constant.UserNotLogin, w)
			return
		}

		account, err := c.AccountService.Account(r.Context(), claims.Address)
		if err != nil {
			response.Fail(constant.Code10012, constant.UserNotLogin, w)
			return
		}

		r.Header.Set(constant.HeaderCustomUser, account.Address)
		r.Header.Set(constant.HeaderCustomToken, strToken)
		next(c, w, r)
	}
}

// RequirePost rejects every method but POST.
func RequirePost(next RequestHandler) RequestHandler {
	return func(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next(c, w, r)
	}
}

func NewServeMux(mux *http.ServeMux, c *config.ServerConfig) {

	middlewareAPI := NewBridgeBuilder(c).Build()
	middlewarePost := NewBridgeBuilder(c).WithPostMiddlewares(RequirePost).Build()
	middlewareAuth := NewBridgeBuilder(c).WithPostMiddlewares(RequireAuth).Build()
	middlewareAuthPost := NewBridgeBuilder(c).WithPostMiddlewares(RequirePost, RequireAuth).Build()

	mux.HandleFunc("/ws", middlewareAPI(handlerSocketConnection))

	mux.HandleFunc("/api/account/register", middlewarePost(handlerAccountRegister))
	mux.HandleFunc("/api/account/login", middlewarePost(handlerAccountLogin))
	mux.HandleFunc("/api/account/balance", middlewareAuth(handlerAccountBalance))
	mux.HandleFunc("/api/account/history", middlewareAuth(handlerAccountHistory))
	mux.HandleFunc("/api/account/receive", middlewareAuthPost(handlerReceiveCoin))

	mux.HandleFunc("/api/lottery/participate", middlewareAuthPost(handlerParticipate))
	mux.HandleFunc("/api/lottery/pickWinner", middlewareAuthPost(handlerPickWinner))
	mux.HandleFunc("/api/lottery/canParticipate", middlewareAPI(handlerCanParticipate))
	mux.HandleFunc("/api/lottery/participators", middlewareAPI(handlerParticipators))
	mux.HandleFunc("/api/lottery/participators/count", middlewareAPI(handlerParticipatorCount))
	mux.HandleFunc("/api/lottery/participator", middlewareAPI(handlerParticipator))
	mux.HandleFunc("/api/lottery/balance", middlewareAPI(handlerLotteryBalance))
	mux.HandleFunc("/api/lottery/organizer", middlewareAPI(handlerOrganizer))
	mux.HandleFunc("/api/lottery/round", middlewareAPI(handlerRound))
	mux.HandleFunc("/api/lottery/state", middlewareAPI(handlerState))
	mux.HandleFunc("/api/lottery/history", middlewareAPI(handlerHistory))
}

// handlerSocketConnection streams lottery events. The first message is a
// state snapshot.
func handlerSocketConnection(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	conn, err := c.WebSocket.Upgrade(w, r, nil)
	if err != nil {
		c.Logger.Warn("upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// the client only listens; a read error means it went away
	go func() {
		defer cancel()
		for {
			if _, _, errs := conn.ReadMessage(); errs != nil {
				return
			}
		}
	}()

	remote := conn.RemoteAddr().String()
	c.Logger.Info("subscriber online", zap.String("remote", remote))
	err = c.Hub.ConnOnline(ctx, conn, c.Lottery.Snapshot)
	if errors.Is(err, service.SlowSubscriberError) {
		c.Logger.Warn("subscriber dropped", zap.String("remote", remote))
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.Logger.Info("subscriber offline", zap.String("remote", remote))
}

// respondError writes err and logs it when it is not a business rejection.
func respondError(c *config.ServerConfig, w http.ResponseWriter, r *http.Request, err error) {
	if !service.IsRejection(err) {
		c.Logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	response.Error(err, w)
}

// ParseBody parse the request body into the type of value.
func ParseBody(r io.Reader, value any) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	err = json.Unmarshal(body, &value)
	if err != nil {
		return fmt.Errorf("unable to parse body: %w", err)
	}

	valid, err := govalidator.ValidateStruct(value)

	if err != nil {
		return fmt.Errorf("unable to validate body: %w", err)
	}

	if !valid {
		return fmt.Errorf("Body is not valid")
	}

	return nil
}
