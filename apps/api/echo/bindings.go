package echoapi

import (
	"mime/multipart"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/acadyo/acadyo/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// formFile returns the uploaded file if one was provided, after applying the
// upload policy. A missing file (or a non-multipart request) is not an error.
func formFile(ctx echo.Context, name string) (*multipart.FileHeader, error) {
	fh, err := ctx.FormFile(name)
	if err != nil {
		// missing file or non-multipart body; the field is optional
		return nil, nil
	}
	if err = core.CheckUpload(fh.Size, fh.Header.Get("Content-Type")); err != nil {
		return nil, err
	}
	return fh, nil
}
