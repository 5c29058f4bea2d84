package handler

import (
	"net/http"

	"learnhub/internal/api/v1/dto"
	"learnhub/internal/middleware"
	"learnhub/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	defaultPostLimit = 20
	maxPostLimit     = 100
)

type PostHandler struct {
	postService service.PostService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewPostHandler(postService service.PostService, v *validator.Validate, logger zerolog.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		validate:    v,
		logger:      logger.With().Str("handler", "PostHandler").Logger(),
	}
}

// RegisterRoutes mounts blog routes: posts, comments, replies and reactions.
func (h *PostHandler) RegisterRoutes(r chi.Router, authMw func(http.Handler) http.Handler) {
	r.Get("/posts", h.listPosts)
	r.Get("/posts/{postId}", h.getPost)
	r.Get("/posts/{postId}/reactions", h.getReactions)

	r.Group(func(r chi.Router) {
		r.Use(authMw)
		r.Post("/posts", h.createPost)
		r.Patch("/posts/{postId}", h.updatePost)
		r.Delete("/posts/{postId}", h.deletePost)
		r.Put("/posts/{postId}/reactions", h.toggleReaction)

		r.Post("/posts/{postId}/comments", h.createComment)
		r.Patch("/comments/{commentId}", h.updateComment)
		r.Delete("/comments/{commentId}", h.deleteComment)
		r.Post("/comments/{commentId}/replies", h.createReply)
		r.Delete("/replies/{replyId}", h.deleteReply)
	})
}

// listPosts godoc
// @Summary List published posts
// @Tags posts
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} dto.PostSummaryResponseDTO
// @Router /posts [get]
func (h *PostHandler) listPosts(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", defaultPostLimit)
	if !ok {
		return
	}
	offset, ok := queryInt(w, r, "offset", 0)
	if !ok {
		return
	}
	if limit == 0 || limit > maxPostLimit {
		limit = maxPostLimit
	}
	posts, err := h.postService.ListPosts(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve posts")
		return
	}
	out := make([]dto.PostSummaryResponseDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, dto.PostSummaryResponseDTO{
			ID:           p.Post.ID,
			UserID:       p.Post.UserID,
			AuthorName:   p.Post.AuthorName,
			Title:        p.Post.Title,
			Excerpt:      p.Excerpt,
			ImageURL:     p.Post.ImageURL,
			CommentCount: p.Post.CommentCount,
			Reactions:    toReactionDTOs(p.Reactions),
			CreatedAt:    p.Post.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// createPost godoc
// @Summary Write a post
// @Description Content is HTML; unsafe markup is removed.
// @Tags posts
// @Accept json
// @Produce json
// @Param body body dto.PostCreateDTO true "Post"
// @Success 201 {object} dto.PostResponseDTO
// @Failure 400 {string} string "Validation failed"
// @Router /posts [post]
func (h *PostHandler) createPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.PostCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	p, err := h.postService.CreatePost(r.Context(), userID, service.PostInput{
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "create post")
		return
	}
	writeJSON(w, http.StatusCreated, toPostDTO(p))
}

// getPost godoc
// @Summary Get a post with its discussion
// @Tags posts
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} dto.PostDetailResponseDTO
// @Failure 404 {string} string "Post not found"
// @Router /posts/{postId} [get]
func (h *PostHandler) getPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "postId", "Post")
	if !ok {
		return
	}
	d, err := h.postService.GetPost(r.Context(), middleware.UserID(r.Context()), postID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve post")
		return
	}
	writeJSON(w, http.StatusOK, dto.PostDetailResponseDTO{
		PostResponseDTO: toPostDTO(d.Post),
		Comments:        toThreadDTOs(d.Comments),
		Reactions:       toReactionDTOs(d.Reactions),
		ViewerReaction:  optionalString(d.ViewerReaction),
	})
}

func (h *PostHandler) updatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "postId", "Post")
	if !ok {
		return
	}
	var req dto.PostUpdateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	p, err := h.postService.UpdatePost(r.Context(), userID, postID, service.PostUpdate{
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "update post")
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(p))
}

func (h *PostHandler) deletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "postId", "Post")
	if !ok {
		return
	}
	if err := h.postService.DeletePost(r.Context(), userID, postID); err != nil {
		writeServiceError(w, h.logger, err, "delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createComment godoc
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param postId path string true "Post ID"
// @Param body body dto.CommentCreateDTO true "Comment"
// @Success 201 {object} dto.CommentResponseDTO
// @Router /posts/{postId}/comments [post]
func (h *PostHandler) createComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "postId", "Post")
	if !ok {
		return
	}
	var req dto.CommentCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	c, err := h.postService.CreateComment(r.Context(), userID, postID, req.Content)
	if err != nil {
		writeServiceError(w, h.logger, err, "create comment")
		return
	}
	writeJSON(w, http.StatusCreated, toCommentDTO(c))
}

func (h *PostHandler) updateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId", "Comment")
	if !ok {
		return
	}
	var req dto.CommentCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	c, err := h.postService.UpdateComment(r.Context(), userID, commentID, req.Content)
	if err != nil {
		writeServiceError(w, h.logger, err, "update comment")
		return
	}
	writeJSON(w, http.StatusOK, toCommentDTO(c))
}

func (h *PostHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId", "Comment")
	if !ok {
		return
	}
	if err := h.postService.DeleteComment(r.Context(), userID, commentID); err != nil {
		writeServiceError(w, h.logger, err, "delete comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createReply godoc
// @Summary Reply to a comment or to another reply
// @Tags comments
// @Accept json
// @Produce json
// @Param commentId path string true "Comment ID"
// @Param body body dto.ReplyCreateDTO true "Reply"
// @Success 201 {object} dto.ReplyResponseDTO
// @Failure 404 {string} string "Reply not found"
// @Router /comments/{commentId}/replies [post]
func (h *PostHandler) createReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentId", "Comment")
	if !ok {
		return
	}
	var req dto.ReplyCreateDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	reply, err := h.postService.CreateReply(r.Context(), userID, commentID, req.Content, req.ParentReplyID)
	if err != nil {
		writeServiceError(w, h.logger, err, "create reply")
		return
	}
	writeJSON(w, http.StatusCreated, toReplyDTO(reply))
}

func (h *PostHandler) deleteReply(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	replyID, ok := pathID(w, r, "replyId", "Reply")
	if !ok {
		return
	}
	if err := h.postService.DeleteReply(r.Context(), userID, replyID); err != nil {
		writeServiceError(w, h.logger, err, "delete reply")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// toggleReaction godoc
// @Summary Toggle the viewer's reaction
// @Description Sending the current reaction type again removes it; another type replaces it.
// @Tags posts
// @Accept json
// @Produce json
// @Param postId path string true "Post ID"
// @Param body body dto.ReactionDTO true "Reaction"
// @Success 200 {object} dto.ReactionsResponseDTO
// @Router /posts/{postId}/reactions [put]
func (h *PostHandler) toggleReaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "postId", "Post")
	if !ok {
		return
	}
	var req dto.ReactionDTO
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	st, err := h.postService.ToggleReaction(r.Context(), userID, postID, req.Type)
	if err != nil {
		writeServiceError(w, h.logger, err, "update reaction")
		return
	}
	writeJSON(w, http.StatusOK, toReactionsDTO(st))
}

func (h *PostHandler) getReactions(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "postId", "Post")
	if !ok {
		return
	}
	st, err := h.postService.GetReactions(r.Context(), middleware.UserID(r.Context()), postID)
	if err != nil {
		writeServiceError(w, h.logger, err, "retrieve reactions")
		return
	}
	writeJSON(w, http.StatusOK, toReactionsDTO(st))
}

func toReactionsDTO(st *service.ReactionState) dto.ReactionsResponseDTO {
	return dto.ReactionsResponseDTO{Counts: toReactionDTOs(st.Counts), ViewerReaction: optionalString(st.ViewerReaction)}
}
