package gateway

import (
	"bytes"
	"fmt"
	"mime/multipart"

	"github.com/mcoot/keyshop/internal/model"
)

func encodeGameForm(d model.GameDraft, withKeys bool) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{
		{"DeveloperTitle", d.DeveloperTitle},
		{"PublisherTitle", d.PublisherTitle},
		{"Price", formatPrice(d.Price)},
		{"Title", d.Title},
	}
	if d.Description != "" {
		fields = append(fields, [2]string{"Description", d.Description})
	}
	for i, genre := range d.GenreIDs {
		fields = append(fields, [2]string{fmt.Sprintf("Genres[%d].Title", i), genre})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if withKeys && d.Keys != nil {
		if err := writeFile(w, "Keys", *d.Keys); err != nil {
			return nil, "", err
		}
	}
	if d.Image != nil {
		if err := writeFile(w, "Image", *d.Image); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func encodeKeysForm(keys model.Upload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := writeFile(w, "Keys", keys); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, u model.Upload) error {
	name := u.Filename
	if name == "" {
		name = field
	}
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return err
	}
	_, err = part.Write(u.Content)
	return err
}
