package http

import (
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
)

// readTextBody returns the request body as text. A JSON body must be a JSON
// string, which is decoded; any other body is taken verbatim.
func readTextBody(c *gin.Context) (string, error) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	if !isJSON(c) {
		return string(data), nil
	}

	var text string
	if err := sonic.Unmarshal(data, &text); err != nil {
		return "", err
	}
	return text, nil
}

type executeRequest struct {
	Cmd string `json:"cmd"`
}

// readCommand accepts {"cmd": "..."}, a JSON string, or a raw text body.
func readCommand(c *gin.Context) (string, error) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	if !isJSON(c) {
		return string(data), nil
	}

	var req executeRequest
	if err := sonic.Unmarshal(data, &req); err == nil {
		return req.Cmd, nil
	}
	var cmd string
	if err := sonic.Unmarshal(data, &cmd); err != nil {
		return "", err
	}
	return cmd, nil
}

func isJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json")
}
