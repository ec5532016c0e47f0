// Package api exposes the registered ciphers over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"toyblock/internal/fn"
	"toyblock/pkg/bitops"
	"toyblock/pkg/bitstr"
	"toyblock/pkg/engine"
	"toyblock/pkg/log"
	"toyblock/pkg/modes"
	_ "toyblock/pkg/sdes"
	_ "toyblock/pkg/spn"
	"toyblock/pkg/wiring"

	"github.com/labstack/echo/v4"
)

type CipherApi struct {
	Api     *echo.Echo
	Workers int
}

type EncryptRequest struct {
	Plaintext string `json:"plaintext"`
	Key       string `json:"key"`
	Rounds    int    `json:"rounds"`
}

type EncryptResponse struct {
	Ciphertext string `json:"ciphertext"`
	Rounds     int    `json:"rounds"`
}

type EncryptManyRequest struct {
	Blocks []uint64 `json:"blocks"`
	Key    string   `json:"key"`
	Rounds int      `json:"rounds"`
	Mode   string   `json:"mode"` // ecb when empty
	IV     uint64   `json:"iv"`
}

type EncryptManyResponse struct {
	Blocks []uint64 `json:"blocks"`
}

type RoundKeysResponse struct {
	RoundKeys []string `json:"round_keys"`
}

type CiphersResponse struct {
	Ciphers []string `json:"ciphers"`
}

func NewCipherApi(workers int) *CipherApi {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	capi := &CipherApi{Api: e, Workers: max(workers, 1)}

	e.Use(logRequests)
	e.GET("/v1/ciphers", capi.Ciphers)
	e.POST("/v1/:cipher/encrypt", capi.Encrypt)
	e.POST("/v1/:cipher/encrypt-many", capi.EncryptMany)
	e.GET("/v1/:cipher/round-keys", capi.RoundKeys)
	e.GET("/v1/:cipher/wiring", capi.Wiring)
	return capi
}

func logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		log.Debug().Str("method", c.Request().Method).Str("path", c.Path()).
			Str("cipher", c.Param("cipher")).Dur("took", time.Since(start)).Err(err).Msg("api request")
		return err
	}
}

// httpError maps package errors onto status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, engine.ErrUnknownCipher):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, bitops.ErrWidthViolation),
		errors.Is(err, engine.ErrConfiguration),
		errors.Is(err, bitstr.ErrSyntax),
		errors.Is(err, modes.ErrUnknownMode),
		errors.Is(err, wiring.ErrFormat):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return err
}

func lookup(c echo.Context) (*engine.Definition, error) {
	return engine.Lookup(c.Param("cipher"))
}

func roundsOr(def *engine.Definition, rounds int) int {
	if rounds == 0 {
		return def.DefaultRounds
	}
	return rounds
}

func (capi *CipherApi) Ciphers(c echo.Context) error {
	return c.JSON(http.StatusOK, CiphersResponse{Ciphers: engine.Names()})
}

func (capi *CipherApi) Encrypt(c echo.Context) error {
	def, err := lookup(c)
	if err != nil {
		return httpError(err)
	}
	var req EncryptRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	p, err := bitstr.Parse(req.Plaintext, def.BlockWidth)
	if err != nil {
		return httpError(err)
	}
	key, err := bitstr.Parse(req.Key, def.KeyWidth)
	if err != nil {
		return httpError(err)
	}
	rounds := roundsOr(def, req.Rounds)
	out, err := engine.Encrypt(def, p, key, rounds)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, EncryptResponse{Ciphertext: bitstr.Format(out, def.BlockWidth), Rounds: rounds})
}

func (capi *CipherApi) EncryptMany(c echo.Context) error {
	def, err := lookup(c)
	if err != nil {
		return httpError(err)
	}
	var req EncryptManyRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	key, err := bitstr.Parse(req.Key, def.KeyWidth)
	if err != nil {
		return httpError(err)
	}
	mode := modes.ModeECB
	if req.Mode != "" {
		if mode, err = modes.ParseMode(req.Mode); err != nil {
			return httpError(err)
		}
	}
	cipher, err := engine.NewCipher(def, key, roundsOr(def, req.Rounds))
	if err != nil {
		return httpError(err)
	}

	var out []uint64
	if mode == modes.ModeECB {
		out, err = cipher.EncryptManyParallel(c.Request().Context(), req.Blocks, capi.Workers)
	} else {
		out, err = modes.Encrypt(mode, cipher, req.IV, req.Blocks)
	}
	if err != nil {
		return httpError(err)
	}
	if out == nil {
		out = []uint64{}
	}
	return c.JSON(http.StatusOK, EncryptManyResponse{Blocks: out})
}

func (capi *CipherApi) RoundKeys(c echo.Context) error {
	def, err := lookup(c)
	if err != nil {
		return httpError(err)
	}
	key, err := bitstr.Parse(c.QueryParam("key"), def.KeyWidth)
	if err != nil {
		return httpError(err)
	}
	rounds, err := queryInt(c, "rounds", def.DefaultRounds)
	if err != nil {
		return err
	}
	cipher, err := engine.NewCipher(def, key, rounds)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, RoundKeysResponse{RoundKeys: bitstr.FormatAll(cipher.RoundKeys(), def.RoundKeyWidth)})
}

var contentTypes = map[string]string{
	"svg": "image/svg+xml",
	"png": "image/png",
	"dot": "text/vnd.graphviz",
}

func (capi *CipherApi) Wiring(c echo.Context) error {
	def, err := lookup(c)
	if err != nil {
		return httpError(err)
	}
	rounds, err := queryInt(c, "rounds", def.DefaultRounds)
	if err != nil {
		return err
	}
	format := fn.T(c.QueryParam("format") == "", "svg", c.QueryParam("format"))
	ct, ok := contentTypes[format]
	if !ok {
		return httpError(wiring.ErrFormat)
	}
	dot, err := wiring.Dot(def, rounds)
	if err != nil {
		return httpError(err)
	}
	if format == "dot" {
		return c.Blob(http.StatusOK, ct, []byte(dot))
	}
	img, err := wiring.Render(c.Request().Context(), dot, format)
	if err != nil {
		return httpError(err)
	}
	return c.Blob(http.StatusOK, ct, img)
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+": "+err.Error())
	}
	return n, nil
}

func (capi *CipherApi) Run(addr string) error {
	log.Info().Str("addr", addr).Msg("api listening")
	err := capi.Api.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (capi *CipherApi) Shutdown(ctx context.Context) error {
	return capi.Api.Shutdown(ctx)
}
