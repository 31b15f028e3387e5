package emisapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pacific-emis/emisctl/internal/paging"
)

// Schools pages through GET /api/schools.
func (c *Client) Schools(pageSize int) *paging.Pager[Record] {
	return collection[Record](c, "/api/schools", pageSize)
}

// Teachers pages through GET /api/teachers.
func (c *Client) Teachers(pageSize int) *paging.Pager[Record] {
	return collection[Record](c, "/api/teachers", pageSize)
}

// FilterSchools pages through POST /api/schools/collection/filter. The
// filter's PageNo is replaced by the page being requested.
func (c *Client) FilterSchools(filter SchoolFilter) *paging.Pager[School] {
	return paging.New(func(ctx context.Context, pageNo int) (paging.Page[School], error) {
		body := filter
		body.PageNo = pageNo

		var env Envelope[School]
		if err := c.getJSON(ctx, http.MethodPost, "/api/schools/collection/filter", body, &env); err != nil {
			return paging.Page[School]{}, err
		}
		c.logger.Verbose("school filter page %d: %d schools (last=%v)", pageNo, len(env.ResultSet), env.Last())
		return paging.Page[School]{Items: env.ResultSet, Last: env.Last()}, nil
	})
}

// DownloadSurveyPDF regenerates the survey PDF of one school for year and
// copies it to w. It returns the number of bytes written.
func (c *Client) DownloadSurveyPDF(ctx context.Context, schNo string, year int, w io.Writer) (int64, error) {
	path := fmt.Sprintf("/api/pdfSurvey/reload/%s/%s?TargetYear", url.PathEscape(schNo), strconv.Itoa(year))
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download survey %s/%d: %w", schNo, year, err)
	}
	return n, nil
}
