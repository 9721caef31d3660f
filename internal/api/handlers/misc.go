package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"
)

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClientLog relays arbitrary client-side text into the server log. No auth
// and no validation: the mobile dashboard uses it to surface crashes that
// happen before login.
func ClientLog(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	zap.L().Info("client log", zap.ByteString("body", body))
	writeJSON(w, http.StatusOK, map[string]bool{"logged": true})
}
