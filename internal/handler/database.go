package handler

import (
	"errors"

	"github.com/dylanjw/mdb/internal/protocol"
	"github.com/dylanjw/mdb/internal/query"
	"github.com/hashicorp/go-hclog"
)

// ServerErrorBody is the only body a client sees when a database request fails.
const ServerErrorBody = "Server Error"

// DataStore is what the database handler needs from the store.
type DataStore interface {
	Lookup(keys []string) map[string]string
	Update(values map[string]string) error
}

// BadRequestCounter is notified whenever a request is answered with a server error.
type BadRequestCounter interface {
	IncBadRequest()
}

// Database answers GET requests whose URI is a /get or /set operation.
type Database struct {
	store   DataStore
	logger  hclog.Logger
	counter BadRequestCounter
}

// NewDatabase builds the handler. counter may be nil.
func NewDatabase(store DataStore, counter BadRequestCounter, logger hclog.Logger) *Database {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Database{
		store:   store,
		logger:  logger,
		counter: counter,
	}
}

// Table returns the overrides that register the database handler for GET.
func (db *Database) Table() Table {
	return Table{"GET": db.Handle}
}

// Handle runs the decoded operation against the store. Decoding failures become
// a 500 response; the cause is only logged. Store persistence failures are returned.
func (db *Database) Handle(req *protocol.Request) ([]byte, error) {
	op, err := query.Decode(req.URI)
	if err != nil {
		return db.serverError(req, err), nil
	}

	var data interface{}
	switch op.Kind {
	case query.Get:
		data = db.store.Lookup(op.Keys)
	case query.Set:
		if err := db.store.Update(op.Values); err != nil {
			return nil, err
		}
		db.logger.Debug("set applied", "keys", len(op.Values))
		data = []string{"success"}
	default:
		return nil, errors.New("decoded operation has no kind")
	}

	body, err := encodeJSON(data)
	if err != nil {
		return nil, err
	}
	return protocol.MustResponse(protocol.StatusOK, nil, body).Bytes(), nil
}

func (db *Database) serverError(req *protocol.Request, cause error) []byte {
	db.logger.Info("bad database request", "uri", req.URI, "error", cause)
	if db.counter != nil {
		db.counter.IncBadRequest()
	}
	return protocol.MustResponse(protocol.StatusServerError, nil, ServerErrorBody).Bytes()
}
