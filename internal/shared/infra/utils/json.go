package utils

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// UnmarshalAndHandle decodifica el payload de un evento y se lo pasa a handler.
// Un payload corrupto se loguea y se descarta.
func UnmarshalAndHandle[T any](log *zap.Logger, data json.RawMessage, handler func(T)) error {
	var evt T
	if err := json.Unmarshal(data, &evt); err != nil {
		log.Warn("Failed to unmarshal event data",
			zap.String("payload_type", fmt.Sprintf("%T", evt)),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return err
	}
	handler(evt)
	return nil
}
