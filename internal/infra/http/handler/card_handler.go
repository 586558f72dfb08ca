package handler

import (
	"net/http"
	"time"

	"github.com/boardkit/api/internal/app"
	"github.com/boardkit/api/pkg/apierror"
	"github.com/boardkit/api/pkg/domain/board"
	"github.com/boardkit/api/pkg/domain/shared"
	"github.com/boardkit/api/pkg/logger"
	"github.com/boardkit/api/pkg/validator"
)

// maxAttachmentSize caps uploaded attachment bodies (25MB).
const maxAttachmentSize = 25 << 20

// CardHandler handles card requests.
type CardHandler struct {
	cards     *app.CardService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cards *app.CardService, log *logger.Logger) *CardHandler {
	return &CardHandler{
		cards:     cards,
		validator: validator.New(),
		logger:    log.With("handler", "card"),
	}
}

// CardResponse is the public representation of a card.
type CardResponse struct {
	ID          string     `json:"id"`
	ListID      *string    `json:"list_id"`
	CreatorID   string     `json:"creator_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `json:"completed"`
	Status      string     `json:"status"`
	Position    int        `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newCardResponse(c *board.Card) CardResponse {
	resp := CardResponse{
		ID:          c.ID().String(),
		CreatorID:   c.CreatorID().String(),
		Name:        c.Name(),
		Description: c.Description(),
		DueDate:     c.DueDate(),
		Completed:   c.Completed(),
		Status:      string(c.Status()),
		Position:    c.Position(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
	if listID := c.ListID(); listID != nil {
		s := listID.String()
		resp.ListID = &s
	}
	return resp
}

func newCardListResponse(cards []*board.Card) ListResponse[CardResponse] {
	data := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		data = append(data, newCardResponse(c))
	}
	return ListResponse[CardResponse]{Data: data, Total: len(data)}
}

// Create creates a card, filed on a list or in the caller's inbox.
// POST /api/v1/cards
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req app.CreateCardInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	c, err := h.cards.Create(r.Context(), actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCardResponse(c))
}

// Get returns a single card.
// GET /api/v1/cards/{cardID}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}

	c, err := h.cards.Get(r.Context(), cardID, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCardResponse(c))
}

// ListInbox returns the caller's inbox cards.
// GET /api/v1/cards/inbox
func (h *CardHandler) ListInbox(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.ListInbox(r.Context(), actorID(r))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCardListResponse(cards))
}

// ListByList returns the cards of a list in position order.
// GET /api/v1/lists/{listID}/cards
func (h *CardHandler) ListByList(w http.ResponseWriter, r *http.Request) {
	listID, ok := idParam(w, r, "listID")
	if !ok {
		return
	}

	cards, err := h.cards.ListByList(r.Context(), listID, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCardListResponse(cards))
}

// Update changes a card's fields.
// PATCH /api/v1/cards/{cardID}
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}

	var req app.UpdateCardInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	c, err := h.cards.Update(r.Context(), cardID, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCardResponse(c))
}

// MoveCardRequest is the request body for moving a card onto a list.
type MoveCardRequest struct {
	ListID   string `json:"list_id" validate:"required,uuid"`
	Position int    `json:"position" validate:"min=0"`
}

// Move files a card onto a list, including out of the inbox.
// POST /api/v1/cards/{cardID}/move
func (h *CardHandler) Move(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}

	var req MoveCardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	listID, err := shared.IDFromString(req.ListID)
	if err != nil {
		apierror.BadRequest("Invalid list_id").WriteJSON(w)
		return
	}

	c, err := h.cards.Move(r.Context(), cardID, actorID(r), listID, req.Position)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCardResponse(c))
}

// Delete removes a card.
// DELETE /api/v1/cards/{cardID}
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}

	if err := h.cards.Delete(r.Context(), cardID, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CommentResponse is the public representation of a comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	CardID    string    `json:"card_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func newCommentResponse(c *board.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID().String(),
		CardID:    c.CardID().String(),
		AuthorID:  c.AuthorID().String(),
		Body:      c.Body(),
		CreatedAt: c.CreatedAt(),
	}
}

// AddComment comments on a card.
// POST /api/v1/cards/{cardID}/comments
func (h *CardHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}

	var req app.CreateCommentInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	comment, err := h.cards.AddComment(r.Context(), cardID, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCommentResponse(comment))
}

// ListComments returns a card's comments, oldest first.
// GET /api/v1/cards/{cardID}/comments
func (h *CardHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}

	comments, err := h.cards.ListComments(r.Context(), cardID, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}

	data := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		data = append(data, newCommentResponse(c))
	}
	respondJSON(w, http.StatusOK, ListResponse[CommentResponse]{Data: data, Total: len(data)})
}

// EditCommentRequest is the request body for editing a comment.
type EditCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

// EditComment edits a comment's body. Author only.
// PATCH /api/v1/comments/{commentID}
func (h *CardHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := idParam(w, r, "commentID")
	if !ok {
		return
	}

	var req EditCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	comment, err := h.cards.EditComment(r.Context(), commentID, actorID(r), req.Body)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCommentResponse(comment))
}

// DeleteComment removes a comment. Author or board admin.
// DELETE /api/v1/comments/{commentID}
func (h *CardHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := idParam(w, r, "commentID")
	if !ok {
		return
	}

	if err := h.cards.DeleteComment(r.Context(), commentID, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChecklistItemResponse is the public representation of a checklist item.
type ChecklistItemResponse struct {
	ID       string `json:"id"`
	CardID   string `json:"card_id"`
	Title    string `json:"title"`
	Done     bool   `json:"done"`
	Position int    `json:"position"`
}

func newChecklistItemResponse(i *board.ChecklistItem) ChecklistItemResponse {
	return ChecklistItemResponse{
		ID:       i.ID().String(),
		CardID:   i.CardID().String(),
		Title:    i.Title(),
		Done:     i.Done(),
		Position: i.Position(),
	}
}

// AddChecklistItem adds a checklist item to a card.
// POST /api/v1/cards/{cardID}/checklist
func (h *CardHandler) AddChecklistItem(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}

	var req app.CreateChecklistItemInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	item, err := h.cards.AddChecklistItem(r.Context(), cardID, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newChecklistItemResponse(item))
}

// ListChecklist returns a card's checklist in position order.
// GET /api/v1/cards/{cardID}/checklist
func (h *CardHandler) ListChecklist(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}

	items, err := h.cards.ListChecklist(r.Context(), cardID, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}

	data := make([]ChecklistItemResponse, 0, len(items))
	for _, i := range items {
		data = append(data, newChecklistItemResponse(i))
	}
	respondJSON(w, http.StatusOK, ListResponse[ChecklistItemResponse]{Data: data, Total: len(data)})
}

// UpdateChecklistItem updates a checklist item.
// PATCH /api/v1/checklist/{itemID}
func (h *CardHandler) UpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(w, r, "itemID")
	if !ok {
		return
	}

	var req app.UpdateChecklistItemInput
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate(w, h.validator, req) {
		return
	}

	item, err := h.cards.UpdateChecklistItem(r.Context(), itemID, actorID(r), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newChecklistItemResponse(item))
}

// DeleteChecklistItem removes a checklist item.
// DELETE /api/v1/checklist/{itemID}
func (h *CardHandler) DeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(w, r, "itemID")
	if !ok {
		return
	}

	if err := h.cards.DeleteChecklistItem(r.Context(), itemID, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachmentResponse is the public representation of an attachment.
// The storage key stays internal; clients fetch a download URL.
type AttachmentResponse struct {
	ID          string    `json:"id"`
	CardID      string    `json:"card_id"`
	UploaderID  string    `json:"uploader_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

func newAttachmentResponse(a *board.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID().String(),
		CardID:      a.CardID().String(),
		UploaderID:  a.UploaderID().String(),
		FileName:    a.FileName(),
		ContentType: a.ContentType(),
		Size:        a.Size(),
		CreatedAt:   a.CreatedAt(),
	}
}

// Attach uploads a file attachment to a card as multipart form data
// under the "file" field.
// POST /api/v1/cards/{cardID}/attachments
func (h *CardHandler) Attach(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		apierror.BadRequest("Invalid multipart body").WriteJSON(w)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierror.BadRequest("Missing file field").WriteJSON(w)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment, err := h.cards.AttachFile(r.Context(), cardID, actorID(r), app.AttachFileInput{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, newAttachmentResponse(attachment))
}

// ListAttachments returns a card's attachments.
// GET /api/v1/cards/{cardID}/attachments
func (h *CardHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}

	attachments, err := h.cards.ListAttachments(r.Context(), cardID, actorID(r))
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}

	data := make([]AttachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		data = append(data, newAttachmentResponse(a))
	}
	respondJSON(w, http.StatusOK, ListResponse[AttachmentResponse]{Data: data, Total: len(data)})
}

// AttachmentURLResponse carries a time-limited download URL.
type AttachmentURLResponse struct {
	URL string `json:"url"`
}

// AttachmentURL returns a presigned download URL for an attachment.
// GET /api/v1/attachments/{attachmentID}/url
func (h *CardHandler) AttachmentURL(w http.ResponseWriter, r *http.Request) {
	attachmentID, ok := idParam(w, r, "attachmentID")
	if !ok {
		return
	}

	url, err := h.cards.AttachmentURL(r.Context(), attachmentID, actorID(r), 0)
	if err != nil {
		respondErrorMasked(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, AttachmentURLResponse{URL: url})
}

// DeleteAttachment removes an attachment and its stored blob.
// DELETE /api/v1/attachments/{attachmentID}
func (h *CardHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	attachmentID, ok := idParam(w, r, "attachmentID")
	if !ok {
		return
	}

	if err := h.cards.DeleteAttachment(r.Context(), attachmentID, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachLabel puts a label on a card.
// PUT /api/v1/cards/{cardID}/labels/{labelID}
func (h *CardHandler) AttachLabel(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}
	labelID, ok := idParam(w, r, "labelID")
	if !ok {
		return
	}

	if err := h.cards.AttachLabel(r.Context(), cardID, labelID, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DetachLabel takes a label off a card.
// DELETE /api/v1/cards/{cardID}/labels/{labelID}
func (h *CardHandler) DetachLabel(w http.ResponseWriter, r *http.Request) {
	cardID, ok := idParam(w, r, "cardID")
	if !ok {
		return
	}
	labelID, ok := idParam(w, r, "labelID")
	if !ok {
		return
	}

	if err := h.cards.DetachLabel(r.Context(), cardID, labelID, actorID(r)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
