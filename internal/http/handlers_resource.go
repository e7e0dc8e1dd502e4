package http

import (
	"net/http"

	"expensedash/internal/core"
	"expensedash/internal/log"
)

type resourcePage struct {
	Name    string
	Title   string
	Event   string
	ListURL string
	FormURL string
	Filters []fieldView
}

type listData struct {
	Columns []string
	Colspan int
	Rows    []rowView
	Error   string
	Empty   string
}

type formData struct {
	Title   string
	SaveURL string
	ID      int64
	Editing bool
	Fields  []fieldView
	Error   string
}

type confirmData struct {
	Message   string
	Token     string
	DeleteURL string
	CancelURL string
}

// mountResource registers the page and the htmx partials of one resource.
func mountResource[T core.Entity[T]](s *Server, mux *http.ServeMux, v *resourceView[T]) {
	mux.HandleFunc("GET /"+v.path, v.handlePage(s))
	mux.HandleFunc("GET /ui/"+v.path+"/list", v.handleList(s))
	mux.HandleFunc("GET /ui/"+v.path+"/form", v.handleForm(s))
	mux.HandleFunc("GET /ui/"+v.path+"/confirm", v.handleConfirm(s))
	mux.Handle("POST /ui/"+v.path+"/save", s.limit(v.handleSave()))
	mux.Handle("POST /ui/"+v.path+"/delete", s.limit(v.handleDelete()))
	mux.Handle("POST /ui/"+v.path+"/cancel", s.limit(v.handleCancel()))
}

func (v *resourceView[T]) event() string {
	return v.res.Name + ":changed"
}

func (v *resourceView[T]) page(filters core.Filters) resourcePage {
	p := resourcePage{
		Name:    v.res.Name,
		Title:   v.title,
		Event:   v.event(),
		ListURL: partialURL(v.path, "list", nil),
		FormURL: partialURL(v.path, "form", nil),
	}
	for i, key := range v.res.FilterKeys {
		label := key
		if i < len(v.filterLabels) {
			label = v.filterLabels[i]
		}
		p.Filters = append(p.Filters, fieldView{Name: key, Label: label, Type: "text", Value: filters[key]})
	}
	return p
}

func (v *resourceView[T]) handlePage(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := v.page(core.Filters{})
		s.render(w, r, http.StatusOK, "page", newPage(v.title, v.path, &page))
	}
}

func (v *resourceView[T]) handleList(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := v.res.Load(r.Context(), core.Pick(r.URL.Query(), v.res.FilterKeys))

		data := listData{
			Columns: v.columns,
			Colspan: len(v.columns) + 1,
			Error:   state.Error,
			Empty:   "No " + v.res.Plural + " found",
			Rows:    make([]rowView, 0, len(state.Items)),
		}
		for _, item := range state.Items {
			q := idQuery(item.EntityID())
			q.Set("label", v.label(item))
			data.Rows = append(data.Rows, rowView{
				ID:         item.EntityID(),
				Cells:      v.cells(item),
				EditURL:    partialURL(v.path, "form", idQuery(item.EntityID())),
				ConfirmURL: partialURL(v.path, "confirm", q),
			})
		}
		s.render(w, r, http.StatusOK, "list", data)
	}
}

func (v *resourceView[T]) handleForm(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(r.URL.Query(), "id", true)
		if err != nil {
			BadRequestError("Invalid " + v.res.Name + " id").Write(w)
			return
		}

		state := v.res.OpenForm(r.Context(), id)
		verb := "New "
		if state.Editing {
			verb = "Edit "
		}
		s.render(w, r, http.StatusOK, "form", formData{
			Title:   verb + v.res.Name,
			SaveURL: partialURL(v.path, "save", nil),
			ID:      state.Item.EntityID(),
			Editing: state.Editing,
			Fields:  v.fields(r.Context(), state.Item, state.Editing),
			Error:   state.Error,
		})
	}
}

func (v *resourceView[T]) handleSave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parser := NewRequestBodyParser(r)
		if err := parser.Parse(); err != nil {
			BadRequestError("Invalid request format").Write(w)
			return
		}
		editing := parser.Bool("editing")

		sub, err := v.decode(parser, editing)
		if err != nil {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}

		out := v.res.Submit(r.Context(), sub)
		switch {
		case out.Invalid:
			UnprocessableEntityError(out.Error).Write(w)
		case !out.OK:
			ErrorResponse(http.StatusBadGateway, out.Error).Write(w)
		default:
			NewHTMXResponse().
				TriggerChanged(v.res.Name).
				TriggerModalClose().
				TriggerSuccessNotification(out.Message).
				Write(w)
		}
	}
}

func (v *resourceView[T]) handleConfirm(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := ParseID(r.URL.Query(), "id", false)
		if err != nil {
			// Unknown target: the modal stays closed.
			w.WriteHeader(http.StatusOK)
			return
		}
		pending, err := v.res.RequestDelete(id, sanitizeInput(r.URL.Query().Get("label")))
		if err != nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		log.FromContext(r.Context()).DebugContext(r.Context(), "Delete confirmation opened",
			log.FieldResource, v.res.Name,
			log.FieldEntityID, id)

		s.render(w, r, http.StatusOK, "confirm", confirmData{
			Message:   pending.Message(),
			Token:     pending.Token,
			DeleteURL: partialURL(v.path, "delete", nil),
			CancelURL: partialURL(v.path, "cancel", nil),
		})
	}
}

func (v *resourceView[T]) handleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resp := ParseFormOrFail(r); resp != nil {
			resp.TriggerModalClose().Write(w)
			return
		}

		out, known := v.res.ConfirmDelete(r.Context(), r.PostForm.Get("token"))

		// The list reloads and the modal closes whatever happened.
		var resp *HTMXResponseBuilder
		switch {
		case !known:
			resp = ConflictError(out.Error).TriggerErrorNotification(out.Error)
		case !out.OK:
			resp = ErrorResponse(http.StatusBadGateway, out.Error).TriggerErrorNotification(out.Error)
		default:
			resp = NewHTMXResponse().TriggerSuccessNotification(out.Message)
		}
		resp.TriggerChanged(v.res.Name).TriggerModalClose().Write(w)
	}
}

func (v *resourceView[T]) handleCancel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err == nil {
			v.res.CancelDelete(r.PostForm.Get("token"))
		}
		NewHTMXResponse().TriggerModalClose().Write(w)
	}
}
