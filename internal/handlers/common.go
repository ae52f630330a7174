package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nightclub_backoffice/internal/actions"
	"nightclub_backoffice/internal/services"
	"nightclub_backoffice/pkg/utils"
)

// requestContext carries the authenticated staff member into the services.
func requestContext(c *gin.Context) context.Context {
	return services.WithStaffID(c.Request.Context(), c.GetString("staffID"))
}

// queryInput collects query parameters into an actions.Input.
func queryInput(c *gin.Context) actions.Input {
	in := actions.Input{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			in[key] = values[0]
		}
	}
	return in
}

// bodyInput reads a JSON object or a form submission into an actions.Input.
// Query parameters fill keys the body leaves out.
func bodyInput(c *gin.Context) (actions.Input, error) {
	in := queryInput(c)
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return in, nil
	}

	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		dec := json.NewDecoder(c.Request.Body)
		dec.UseNumber()
		var body map[string]interface{}
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		for k, v := range body {
			in[k] = v
		}
		return in, nil
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
	}
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			in[key] = values[0]
		}
	}
	return in, nil
}

func respond(c *gin.Context, res actions.Result) {
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// withBody parses the request body and hands it to fn, answering 400 for unreadable payloads.
func withBody(c *gin.Context, fn func(ctx context.Context, in actions.Input) actions.Result) {
	in, err := bodyInput(c)
	if err != nil {
		utils.LogWarn(err, "Failed to parse request body", map[string]interface{}{"path": c.FullPath()})
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid request payload", err.Error()))
		return
	}
	respond(c, fn(requestContext(c), in))
}
