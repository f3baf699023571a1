package http

import (
	"log/slog"
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth       *AuthHandler
	Bookings   *BookingHandler
	Priority   *PriorityHandler
	Rooms      *RoomHandler
	Teams      *TeamHandler
	Admin      *AdminHandler
	Sessions   SessionResolver
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	resp := newResponder(defaultLogger(cfg.Logger))

	requireSession := RequireSession(cfg.Sessions, resp)
	requireAdmin := RequireAdmin(resp)

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return requireSession(h).ServeHTTP
	}
	protectAdmin := func(h http.HandlerFunc) http.HandlerFunc {
		return requireSession(requireAdmin(h)).ServeHTTP
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Register(w, r)
		})
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.CreateSession(w, r)
		})
		mux.HandleFunc("/logout", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.DeleteCurrentSession(w, r)
		}))
		mux.HandleFunc("/me", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Auth.CurrentUser(w, r)
		}))
	}

	if cfg.Bookings != nil {
		mux.HandleFunc("/bookings", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Bookings.ListBookings(w, r)
			case http.MethodPost:
				cfg.Bookings.CreateBooking(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.HandleFunc("/bookings/", protect(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/bookings/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}
			if rest == "availability" {
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Bookings.CheckAvailability(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Bookings.CancelBooking(w, r, rest)
		}))
	}

	if cfg.Priority != nil {
		mux.HandleFunc("/priority-requests", protect(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Priority.ListOwnRequests(w, r)
			case http.MethodPost:
				cfg.Priority.CreateRequest(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.HandleFunc("/admin/priority-requests", protectAdmin(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Priority.ListRequests(w, r)
		}))
		mux.HandleFunc("/admin/priority-requests/", protectAdmin(func(w http.ResponseWriter, r *http.Request) {
			id, action, ok := splitIDAction(strings.TrimPrefix(r.URL.Path, "/admin/priority-requests/"))
			if !ok {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			switch action {
			case "approve":
				cfg.Priority.ApproveRequest(w, r, id)
			case "reject":
				cfg.Priority.RejectRequest(w, r, id)
			default:
				http.NotFound(w, r)
			}
		}))
	}

	if cfg.Rooms != nil {
		mux.HandleFunc("/rooms", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Rooms.ListRooms(w, r)
		}))
		mux.HandleFunc("/admin/rooms", protectAdmin(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Rooms.CreateRoom(w, r)
		}))
		mux.HandleFunc("/admin/rooms/", protectAdmin(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/admin/rooms/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodPut:
				cfg.Rooms.UpdateRoom(w, r, id)
			case http.MethodDelete:
				cfg.Rooms.DeactivateRoom(w, r, id)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Teams != nil {
		mux.HandleFunc("/teams", protect(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Teams.ListTeams(w, r)
		}))
		mux.HandleFunc("/admin/teams", protectAdmin(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Teams.CreateTeam(w, r)
		}))
		mux.HandleFunc("/admin/teams/", protectAdmin(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/admin/teams/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodPut:
				cfg.Teams.UpdateTeam(w, r, id)
			case http.MethodDelete:
				cfg.Teams.DeactivateTeam(w, r, id)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Admin != nil {
		mux.HandleFunc("/admin/users", protectAdmin(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Admin.ListUsers(w, r)
		}))
		mux.HandleFunc("/admin/users/", protectAdmin(func(w http.ResponseWriter, r *http.Request) {
			id, action, ok := splitIDAction(strings.TrimPrefix(r.URL.Path, "/admin/users/"))
			if !ok {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			switch action {
			case "role":
				cfg.Admin.UpdateUserRole(w, r, id)
			case "status":
				cfg.Admin.UpdateUserStatus(w, r, id)
			default:
				http.NotFound(w, r)
			}
		}))
		mux.HandleFunc("/admin/notifications", protectAdmin(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Admin.ListNotifications(w, r)
		}))
		mux.HandleFunc("/admin/notifications/", protectAdmin(func(w http.ResponseWriter, r *http.Request) {
			id, action, ok := splitIDAction(strings.TrimPrefix(r.URL.Path, "/admin/notifications/"))
			if !ok || action != "read" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Admin.MarkNotificationRead(w, r, id)
		}))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// splitIDAction splits "{id}/{action}" path remainders.
func splitIDAction(rest string) (id, action string, ok bool) {
	id, action, found := strings.Cut(rest, "/")
	if !found || id == "" || action == "" || strings.Contains(action, "/") {
		return "", "", false
	}
	return id, action, true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
