package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/dokumi/ocr-service/internal/ocr"
)

// Engine recognizes text with tesseract through the gosseract client. A
// fresh client per page keeps recognitions independent, which matters when
// pages are processed concurrently: gosseract clients are not safe for
// concurrent use.
type Engine struct {
	clientFactory func() *gosseract.Client
}

var _ ocr.Engine = (*Engine)(nil)

func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Recognize(ctx context.Context, imagePath string, languages string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if languages != "" {
		// "eng+ind" is the tesseract spelling of a multi-language model.
		if err := c.SetLanguage(strings.Split(languages, "+")...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
