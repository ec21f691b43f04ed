package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/go-chi/chi/v5"
)

const maxUpload = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps store sentinels to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		writeDetail(w, http.StatusNotFound, detailText(err, "Não encontrado"))
	case errors.Is(err, shared.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "Operação não permitida")
	case errors.Is(err, shared.ErrConflict):
		writeDetail(w, http.StatusConflict, detailText(err, "Conflito"))
	case errors.Is(err, shared.ErrDuplicateTag):
		writeDetail(w, http.StatusBadRequest, "Tag já existe")
	case errors.Is(err, shared.ErrInvalidInput):
		writeDetail(w, http.StatusBadRequest, detailText(err, "Requisição inválida"))
	default:
		writeDetail(w, http.StatusInternalServerError, "Erro interno")
	}
}

// detailText returns the part of a wrapped sentinel message after the first ": ".
func detailText(err error, fallback string) string {
	if _, after, ok := strings.Cut(err.Error(), ": "); ok && after != "" {
		return after
	}
	return fallback
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body"}, "msg": "invalid JSON body", "type": "value_error"}},
		})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid %s", name))
		return 0, false
	}
	return id, true
}

type pageQuery struct {
	page, perPage int
}

func parsePage(r *http.Request) pageQuery {
	q := pageQuery{page: 1, perPage: 100}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		q.page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		q.perPage = v
	}
	return q
}

func paginate[T any](items []T, q pageQuery) models.Page[T] {
	start := min((q.page-1)*q.perPage, len(items))
	end := min(start+q.perPage, len(items))
	return models.Page[T]{Items: items[start:end], Total: len(items), Page: q.page, PerPage: q.perPage}
}

// Auth

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPassword struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (s *Sandbox) login(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body", "email"}, "msg": "field required", "type": "missing"}},
		})
		return
	}

	u, err := s.store.Authenticate(body.Email, body.Password)
	switch {
	case errors.Is(err, shared.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "Usuário inativo")
		return
	case err != nil:
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	tokens, err := s.issuer.Issue(u)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Erro interno")
		return
	}
	s.store.rememberRefresh(tokens.RefreshToken, u.ID)
	writeJSON(w, http.StatusOK, tokens)
}

func (s *Sandbox) activateAccount(w http.ResponseWriter, r *http.Request) {
	var body tokenPassword
	if !decodeBody(w, r, &body) {
		return
	}
	switch err := s.store.Activate(body.Token, body.NewPassword); {
	case errors.Is(err, shared.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Usuário não encontrado")
	case err != nil:
		writeDetail(w, http.StatusBadRequest, "Token inválido")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Conta ativada"})
	}
}

func (s *Sandbox) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if token := s.store.RequestReset(body.Email); token != "" {
		s.logger.Info("password reset requested", "email", body.Email, "token", token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Se o e-mail existir, enviaremos instruções"})
}

func (s *Sandbox) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body tokenPassword
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.store.Reset(body.Token, body.NewPassword); err != nil {
		writeDetail(w, http.StatusBadRequest, "Token inválido ou expirado")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Senha redefinida"})
}

// Users

func (s *Sandbox) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *Sandbox) listUsers(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("somente_ativos") == "true"
	writeJSON(w, http.StatusOK, paginate(s.store.Users(onlyActive), parsePage(r)))
}

func (s *Sandbox) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, found := s.store.User(id)
	if !found {
		writeDetail(w, http.StatusNotFound, "Usuário não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Sandbox) createUser(w http.ResponseWriter, r *http.Request) {
	var form models.UserForm
	if !decodeBody(w, r, &form) {
		return
	}
	if err := form.ValidateCreate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, shared.UserMessage(err))
		return
	}

	u, token, err := s.store.AddUser(form)
	if err != nil {
		writeError(w, err)
		return
	}
	if token != "" {
		s.logger.Info("activation pending", "email", u.Email, "token", token)
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Sandbox) patchUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	caller := currentUser(r)
	if caller.ID != id && !isStaff(caller) {
		writeDetail(w, http.StatusForbidden, "Operação não permitida")
		return
	}

	var body struct {
		Name      *string            `json:"nome"`
		Email     *string            `json:"email"`
		Role      *string            `json:"perfil"`
		BirthDate *string            `json:"data_nascimento"`
		Status    *models.UserStatus `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Email != nil && !shared.ValidEmail(*body.Email) {
		writeDetail(w, http.StatusUnprocessableEntity, "E-mail inválido")
		return
	}
	if !isStaff(caller) {
		body.Role, body.Status = nil, nil
	}

	u, err := s.store.UpdateUser(id, UserPatch{Name: body.Name, Email: body.Email, Role: body.Role, BirthDate: body.BirthDate, Status: body.Status})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Sandbox) restoreUser(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, models.StatusActive, http.StatusOK)
}

func (s *Sandbox) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, models.StatusInactive, http.StatusNoContent)
}

func (s *Sandbox) setStatus(w http.ResponseWriter, r *http.Request, status models.UserStatus, code int) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := s.store.UpdateUser(id, UserPatch{Status: &status})
	if err != nil {
		writeError(w, err)
		return
	}
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}
	writeJSON(w, code, u)
}

func (s *Sandbox) putUserImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	caller := currentUser(r)
	if caller.ID != id && !isStaff(caller) {
		writeDetail(w, http.StatusForbidden, "Operação não permitida")
		return
	}
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "multipart inválido")
		return
	}
	_, hdr, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "arquivo ausente")
		return
	}

	u, err := s.store.SetUserImage(id, fmt.Sprintf("/static/perfil/%d/%s", id, hdr.Filename))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Resources

func (s *Sandbox) listResources(w http.ResponseWriter, r *http.Request) {
	authorID, _ := strconv.Atoi(r.URL.Query().Get("autor_id"))
	writeJSON(w, http.StatusOK, paginate(s.store.Resources(currentUser(r).ID, authorID), parsePage(r)))
}

func (s *Sandbox) getResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, found := s.store.ViewResource(id)
	if !found {
		writeDetail(w, http.StatusNotFound, "Recurso não encontrado")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Sandbox) createResource(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "multipart inválido")
		return
	}

	structure, err := models.ParseStructure(r.FormValue("estrutura"))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "estrutura inválida")
		return
	}

	res := models.Resource{
		Title:       strings.TrimSpace(r.FormValue("titulo")),
		Description: r.FormValue("descricao"),
		Structure:   structure,
		Visibility:  models.Visibility(r.FormValue("visibilidade")),
		Featured:    r.FormValue("is_destaque") == "true",
	}
	if res.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "titulo é obrigatório")
		return
	}

	switch structure {
	case models.StructureUpload:
		_, hdr, err := r.FormFile("file")
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "arquivo ausente")
			return
		}
		res.MimeType = hdr.Header.Get("Content-Type")
		if res.MimeType == "" || res.MimeType == "application/octet-stream" {
			res.MimeType = mimeFromName(hdr.Filename)
		}
		res.AccessLink = "/static/recursos/" + hdr.Filename
	case models.StructureURL:
		res.ExternalURL = r.FormValue("url_externa")
		if res.ExternalURL == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "url_externa é obrigatória")
			return
		}
	case models.StructureNote:
		res.Content = r.FormValue("conteudo_markdown")
		if res.Content == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "conteudo_markdown é obrigatório")
			return
		}
	}

	var tagIDs []int
	for _, v := range r.MultipartForm.Value["tag_ids"] {
		id, err := strconv.Atoi(v)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "tag_ids inválido")
			return
		}
		tagIDs = append(tagIDs, id)
	}

	created, err := s.store.AddResource(res, tagIDs, currentUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func mimeFromName(name string) string {
	switch lower := strings.ToLower(name); {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".mp4"), strings.HasSuffix(lower, ".webm"):
		return "video/mp4"
	}
	return "application/octet-stream"
}

func (s *Sandbox) likeResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	likes, err := s.store.Like(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"curtidas": likes})
}

func (s *Sandbox) deleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteResource(id, currentUser(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Playlists

func (s *Sandbox) listPlaylists(w http.ResponseWriter, r *http.Request) {
	authorID, _ := strconv.Atoi(r.URL.Query().Get("autor_id"))
	writeJSON(w, http.StatusOK, paginate(s.store.Playlists(authorID), parsePage(r)))
}

func (s *Sandbox) getPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, found := s.store.Playlist(id)
	if !found {
		writeDetail(w, http.StatusNotFound, "Playlist não encontrada")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Sandbox) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var form models.PlaylistForm
	if !decodeBody(w, r, &form) {
		return
	}
	if err := form.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, shared.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusCreated, s.store.AddPlaylist(form, currentUser(r)))
}

func (s *Sandbox) updatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var form models.PlaylistForm
	if !decodeBody(w, r, &form) {
		return
	}
	if err := form.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, shared.UserMessage(err))
		return
	}
	p, err := s.store.UpdatePlaylist(id, form, currentUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Sandbox) reorderPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Order []int `json:"recurso_ids_ordem"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.store.Reorder(id, body.Order, currentUser(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ordem atualizada"})
}

func (s *Sandbox) addResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		ResourceID int `json:"recurso_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.store.AppendResource(id, body.ResourceID, currentUser(r)); err != nil {
		writeError(w, err)
		return
	}
	p, _ := s.store.Playlist(id)
	writeJSON(w, http.StatusOK, p)
}

func (s *Sandbox) removeResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	resourceID, ok := pathID(w, r, "recursoID")
	if !ok {
		return
	}
	if err := s.store.DropResource(id, resourceID, currentUser(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Sandbox) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeletePlaylist(id, currentUser(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tags

// listTags answers with a bare array, as the production backend does.
func (s *Sandbox) listTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Tags())
}

func (s *Sandbox) createTag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"nome"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	t, err := s.store.AddTag(body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Sandbox) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	uses, err := s.store.DeleteTag(id)
	if errors.Is(err, shared.ErrConflict) {
		writeDetail(w, http.StatusConflict, fmt.Sprintf("Tag em uso por %d recurso(s)", uses))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
