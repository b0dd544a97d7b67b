package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/command"
	"github.com/MattchuPichuu/WarDaddy/pkg/discord"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// HealthProbe reports whether a backing dependency is reachable.
// *service.HealthChecker satisfies it.
type HealthProbe interface {
	Check(ctx context.Context) error
}

// API serves the dashboard REST routes.
type API struct {
	commands *command.Service
	health   HealthProbe
	validate *validator.Validate
}

// NewAPI creates the REST API. health may be nil.
func NewAPI(commands *command.Service, health HealthProbe) *API {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &API{
		commands: commands,
		health:   health,
		validate: v,
	}
}

// Routes builds the router.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", a.healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/session", a.login)

		r.Group(func(r chi.Router) {
			r.Use(a.requireSession)

			r.Delete("/session", a.logout)
			r.Get("/board", a.board)
			r.Get("/sitrep", a.sitrep)
			r.Post("/board/publish", a.publish)
			r.Put("/webhook", a.setWebhook)

			r.Route("/combatants", func(r chi.Router) {
				r.Post("/", a.addCombatant)
				r.Get("/{id}", a.getCombatant)
				r.Patch("/{id}", a.updateCombatant)
				r.Delete("/{id}", a.delete)
				r.Post("/{id}/shot", a.shot)
				r.Post("/{id}/state", a.forceState)
				r.Post("/{id}/trigger", a.editTrigger)
			})

			r.Route("/cooldowns", func(r chi.Router) {
				r.Post("/", a.addCooldown)
				r.Patch("/{id}", a.updateCooldown)
				r.Delete("/{id}", a.delete)
				r.Post("/{id}/use", a.useSkill)
				r.Post("/{id}/state", a.forceState)
				r.Post("/{id}/trigger", a.editTrigger)
			})

			r.Route("/timers", func(r chi.Router) {
				r.Post("/", a.addTimer)
				r.Delete("/{id}", a.delete)
				r.Post("/{id}/start", a.startTimer)
				r.Post("/{id}/stop", a.stopTimer)
			})
		})
	})

	return r
}

// replyResponse is the envelope of every successful command
type replyResponse struct {
	Message string          `json:"message,omitempty"`
	Embeds  []discord.Embed `json:"embeds,omitempty"`
	Data    interface{}     `json:"data,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type boardResponse struct {
	ServerTime time.Time                `json:"serverTime"`
	Friendlies []*state.Combatant       `json:"friendlies"`
	Enemies    []*state.Combatant       `json:"enemies"`
	Cooldowns  []*state.CooldownSubject `json:"cooldowns"`
	Timers     []*state.AdhocTimer      `json:"timers"`
}

func newBoardResponse(snap *service.Snapshot) boardResponse {
	return boardResponse{
		ServerTime: snap.At,
		Friendlies: append([]*state.Combatant{}, snap.Faction(state.FactionFriendly)...),
		Enemies:    append([]*state.Combatant{}, snap.Faction(state.FactionEnemy)...),
		Cooldowns:  append([]*state.CooldownSubject{}, snap.Cooldowns...),
		Timers:     append([]*state.AdhocTimer{}, snap.Timers...),
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := httpStatus(err)
	if code >= http.StatusInternalServerError {
		logrus.Errorf("request failed: %v", err)
	}
	writeJSON(w, code, errorResponse{Error: userMessage(err)})
}

// respond writes reply and data, or err when set
func respond(w http.ResponseWriter, status int, reply *discord.Reply, data interface{}, err error) {
	if err != nil {
		writeError(w, err)
		return
	}

	body := replyResponse{Data: data}
	if reply != nil {
		body.Message = reply.Content
		body.Embeds = reply.Embeds
	}
	writeJSON(w, status, body)
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		if err := a.health.Check(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := a.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	sess, err := a.commands.Login(r.Context(), req.Username, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:    sess.Token,
		Username: sess.Username,
		Role:     string(sess.Role),
	})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.commands.Logout(r.Context(), callerFrom(r.Context()).token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) board(w http.ResponseWriter, r *http.Request) {
	reply, err := a.commands.Board(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, reply, newBoardResponse(a.commands.Snapshot(r.Context())), nil)
}

func (a *API) sitrep(w http.ResponseWriter, r *http.Request) {
	reply, err := a.commands.Sitrep(r.Context())
	respond(w, http.StatusOK, reply, nil, err)
}

func (a *API) publish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := a.decode(w, r, &req, true); err != nil {
		writeError(w, err)
		return
	}

	reply, err := a.commands.Publish(r.Context(), actorFrom(r), req.URL)
	respond(w, http.StatusOK, reply, nil, err)
}

func (a *API) setWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := a.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	reply, err := a.commands.SetWebhook(r.Context(), actorFrom(r), req.URL)
	respond(w, http.StatusOK, reply, nil, err)
}

func (a *API) addCombatant(w http.ResponseWriter, r *http.Request) {
	var req addCombatantRequest
	if err := a.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	faction, err := parseFaction(req.Faction)
	if err != nil {
		writeError(w, err)
		return
	}

	reply, c, err := a.commands.AddCombatant(r.Context(), actorFrom(r), req.Name, faction, req.ExternalRef, req.Notes)
	respond(w, http.StatusCreated, reply, c, err)
}

func (a *API) getCombatant(w http.ResponseWriter, r *http.Request) {
	c, err := a.commands.Combatant(r.Context(), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, nil, c, err)
}

func (a *API) updateCombatant(w http.ResponseWriter, r *http.Request) {
	var req updateCombatantRequest
	if err := a.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	patch, err := req.patch()
	if err != nil {
		writeError(w, err)
		return
	}

	c, err := a.commands.UpdateCombatant(r.Context(), actorFrom(r), chi.URLParam(r, "id"), patch)
	respond(w, http.StatusOK, nil, c, err)
}

func (a *API) updateCooldown(w http.ResponseWriter, r *http.Request) {
	var req updateCooldownRequest
	if err := a.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	cs, err := a.commands.UpdateCooldown(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.patch())
	respond(w, http.StatusOK, nil, cs, err)
}

func (a *API) delete(w http.ResponseWriter, r *http.Request) {
	reply, err := a.commands.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, reply, nil, err)
}

func (a *API) shot(w http.ResponseWriter, r *http.Request) {
	reply, err := a.commands.ShotByID(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, reply, nil, err)
}

func (a *API) forceState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if err := a.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	reply, err := a.commands.ForceState(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Status)
	respond(w, http.StatusOK, reply, nil, err)
}

func (a *API) editTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := a.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	reply, err := a.commands.EditTrigger(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Time)
	respond(w, http.StatusOK, reply, nil, err)
}

func (a *API) addCooldown(w http.ResponseWriter, r *http.Request) {
	var req addCooldownRequest
	if err := a.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	reply, cs, err := a.commands.AddCooldown(r.Context(), actorFrom(r), req.Name, req.ExternalRef, req.Notes)
	respond(w, http.StatusCreated, reply, cs, err)
}

func (a *API) useSkill(w http.ResponseWriter, r *http.Request) {
	reply, err := a.commands.UseSkill(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, reply, nil, err)
}

func (a *API) addTimer(w http.ResponseWriter, r *http.Request) {
	var req addTimerRequest
	if err := a.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	reply, t, err := a.commands.AddTimer(r.Context(), actorFrom(r), req.Name, req.ExternalRef)
	respond(w, http.StatusCreated, reply, t, err)
}

func (a *API) startTimer(w http.ResponseWriter, r *http.Request) {
	var req startTimerRequest
	if err := a.decode(w, r, &req, false); err != nil {
		writeError(w, err)
		return
	}

	reply, err := a.commands.StartTimer(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Duration)
	respond(w, http.StatusOK, reply, nil, err)
}

func (a *API) stopTimer(w http.ResponseWriter, r *http.Request) {
	reply, err := a.commands.StopTimer(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	respond(w, http.StatusOK, reply, nil, err)
}
