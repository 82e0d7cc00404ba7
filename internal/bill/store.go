package bill

import "context"

// Store is the remote data-access collaborator. It exposes a per-entity
// accessor; bills are the only entity this portal touches.
type Store interface {
	// Bills returns the bill accessor.
	Bills() BillService
}

// BillService is the asynchronous contract for bill records. Every call
// may fail; rejections carry a plain error with a message the pipelines
// must preserve verbatim (the backend answers with messages such as
// "Erreur 404" or "Erreur 500").
type BillService interface {
	// List returns the raw bill records, in store order.
	List(ctx context.Context) ([]Bill, error)

	// CreateFile uploads a receipt file ahead of form submission and
	// returns the stored file reference the later update is keyed by.
	CreateFile(ctx context.Context, req CreateFileRequest) (*UploadResult, error)

	// Update upserts the complete bill record selected by the stored
	// file key.
	Update(ctx context.Context, req UpdateRequest) (*Bill, error)
}

// CreateFileRequest carries the multipart upload payload: the chosen
// file and the submitting user's email.
type CreateFileRequest struct {
	FileName    string
	FileData    []byte
	ContentType string
	Email       string
}

// UpdateRequest carries the JSON-encoded bill and the stored file key
// selecting the record to upsert.
type UpdateRequest struct {
	Data     []byte
	Selector string
}
