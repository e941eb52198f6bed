package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

// SonicSerializer is echo's JSON codec backed by sonic. An empty request
// body decodes to nothing.
type SonicSerializer struct{}

func (SonicSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	var (
		out []byte
		err error
	)
	if indent != "" {
		out, err = sonic.ConfigStd.MarshalIndent(i, "", indent)
	} else {
		out, err = sonic.ConfigStd.Marshal(i)
	}
	if err != nil {
		return err
	}
	_, err = c.Response().Write(out)
	return err
}

func (SonicSerializer) Deserialize(c echo.Context, i interface{}) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body could not be read").SetInternal(err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(body, i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed JSON body").SetInternal(err)
	}
	return nil
}

var _ echo.JSONSerializer = SonicSerializer{}
