// Package http provides the HTTP API for ragd.
package http

// AuthRequest carries tenant credentials for operations with no other payload.
type AuthRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// QueryRequest is the request body for POST /query.
type QueryRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Message  string `json:"message" form:"message"`
}

// DeleteDocumentRequest is the request body for POST /delete_pdf.
type DeleteDocumentRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Filename string `json:"filename" form:"filename"`
}

// AdminRequest carries the administrative shared secret.
type AdminRequest struct {
	Secret string `json:"secret" form:"secret"`
}

// CreateUserRequest is the request body for POST /admin/create_user.
type CreateUserRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Secret   string `json:"secret" form:"secret"`
}

// DeleteUserRequest is the request body for POST /admin/delete_user.
type DeleteUserRequest struct {
	Username string `json:"username" form:"username"`
	Secret   string `json:"secret" form:"secret"`
}

// UploadResponse is the response body for POST /upload_pdf.
type UploadResponse struct {
	Status string `json:"status"`
	File   string `json:"file"`
	Chunks int    `json:"chunks"`
}

// QueryResponse is the response body for POST /query.
type QueryResponse struct {
	Response string `json:"response"`
}

// ListDocumentsResponse is the response body for POST /list_pdfs.
type ListDocumentsResponse struct {
	Documents []string `json:"pdfs"`
}

// DeleteDocumentResponse is the response body for POST /delete_pdf.
type DeleteDocumentResponse struct {
	Status string `json:"status"`
	File   string `json:"file"`
}

// ListUsersResponse is the response body for POST /admin/list_users.
type ListUsersResponse struct {
	Users []string `json:"users"`
}

// MessageResponse is a generic admin confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
