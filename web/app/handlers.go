package app

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/verdict/internal/chat"
	"github.com/JaimeStill/verdict/internal/reviews"
	"github.com/JaimeStill/verdict/pkg/web"
)

const (
	warnEmptyInput       = "분류할 리뷰 텍스트를 입력해주세요."
	warnModelUnloaded    = "모델이 로드되지 않아 분류를 진행할 수 없습니다."
	warnStoreUnavailable = "데이터베이스 연결이 설정되지 않아 로그를 저장할 수 없습니다."
	errStorePrefix       = "데이터 저장 오류 발생: "
	errClassifyPrefix    = "리뷰 분류 중 오류 발생: "
)

// Example is a sample review shown beneath the form.
type Example struct {
	Label reviews.Label
	Text  string
}

// Examples lists one sample review per label.
var Examples = []Example{
	{Label: reviews.Positive, Text: "사장님이 너무 친절하시고 서비스도 좋아서 다음에도 꼭 주문하고 싶어요!"},
	{Label: reviews.Negative, Text: "주문한 메뉴가 잘못 왔고, 포장이 엉망이라 다 식어서 왔네요."},
}

// ReviewPage is the data rendered by the review form.
type ReviewPage struct {
	Text        string
	Outcome     *reviews.Outcome
	Warning     string
	Error       string
	StoreNotice string
	Examples    []Example
}

// ChatPage is the data rendered by the chat transcript.
type ChatPage struct {
	Session *chat.Session
	Warning string
}

type handler struct {
	cls      chat.Classifier
	sessions chat.System
	ts       *web.TemplateSet
	logger   *slog.Logger
}

func (h *handler) reviewPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, reviewView, &ReviewPage{Examples: Examples})
}

func (h *handler) classify(w http.ResponseWriter, r *http.Request) {
	page := &ReviewPage{
		Text:     r.FormValue("text"),
		Examples: Examples,
	}

	outcome, err := h.cls.Classify(r.Context(), page.Text)
	switch {
	case errors.Is(err, reviews.ErrEmptyInput):
		page.Warning = warnEmptyInput
	case err == reviews.ErrClassifierUnavailable:
		// the bare sentinel means no classifier is loaded; gateway failures wrap it
		page.Warning = warnModelUnloaded
	case err != nil:
		page.Error = errClassifyPrefix + err.Error()
	default:
		page.Outcome = outcome
		page.StoreNotice = storeNotice(outcome)
	}

	status := http.StatusOK
	if err != nil {
		status = reviews.MapHTTPStatus(err)
	}
	h.render(w, status, reviewView, page)
}

func storeNotice(o *reviews.Outcome) string {
	switch {
	case o.Persisted:
		return ""
	case o.PersistError == reviews.ErrStoreUnavailable.Error():
		return warnStoreUnavailable
	default:
		return errStorePrefix + o.PersistError
	}
}

func (h *handler) newChat(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create(r.Context())
	if err != nil {
		h.logger.Error("create chat session failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.chatURL(s.ID), http.StatusSeeOther)
}

func (h *handler) chatPage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.findSession(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, chatView, &ChatPage{Session: s})
}

func (h *handler) send(w http.ResponseWriter, r *http.Request) {
	s, ok := h.findSession(w, r)
	if !ok {
		return
	}

	_, err := h.sessions.Send(r.Context(), s.ID, r.FormValue("text"))
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		h.render(w, http.StatusUnprocessableEntity, chatView, &ChatPage{Session: s, Warning: warnEmptyInput})
		return
	case err != nil:
		h.logger.Error("chat send failed", "session", s.ID, "error", err)
		http.Error(w, err.Error(), chat.MapHTTPStatus(err))
		return
	}

	http.Redirect(w, r, h.chatURL(s.ID), http.StatusSeeOther)
}

func (h *handler) findSession(w http.ResponseWriter, r *http.Request) (*chat.Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err == nil {
		s, err := h.sessions.Find(r.Context(), id)
		if err == nil {
			return s, true
		}
		if !errors.Is(err, chat.ErrNotFound) {
			h.logger.Error("find chat session failed", "error", err)
		}
	}

	h.render(w, http.StatusNotFound, notFoundView, nil)
	return nil, false
}

func (h *handler) chatURL(id uuid.UUID) string {
	return h.ts.BasePath() + "/chat/" + id.String()
}

func (h *handler) render(w http.ResponseWriter, status int, view web.ViewDef, data any) {
	if err := h.ts.RenderView(w, status, layout, view, data); err != nil {
		h.logger.Error("render failed", "template", view.Template, "error", err)
	}
}
