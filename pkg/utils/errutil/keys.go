package errutil

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/counsellor/pkg/domain/types"
)

var (
	// IDs
	ChatIDKey    = goerr.NewTypedKey[types.ChatID]("chat_id")
	UserIDKey    = goerr.NewTypedKey[types.UserID]("user_id")
	RequestIDKey = goerr.NewTypedKey[string]("request_id")

	// Values
	StatusKey     = goerr.NewTypedKey[types.ChatStatus]("status")
	NextStatusKey = goerr.NewTypedKey[types.ChatStatus]("next_status")
	ReasonKey     = goerr.NewTypedKey[string]("reason")
	AttemptKey    = goerr.NewTypedKey[int]("attempt")
	RepositoryKey = goerr.NewTypedKey[string]("repository")
	CollectionKey = goerr.NewTypedKey[string]("collection")
	DurationKey   = goerr.NewTypedKey[time.Duration]("duration")
	LengthKey     = goerr.NewTypedKey[int]("length")

	// External services
	ServiceKey    = goerr.NewTypedKey[string]("service")
	ModelKey      = goerr.NewTypedKey[string]("model")
	HTTPStatusKey = goerr.NewTypedKey[int]("http_status")

	// File and path
	FilePathKey = goerr.NewTypedKey[string]("file_path")
)
