package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yashpatel08/railsathi/internal/platform/apierr"
	"github.com/yashpatel08/railsathi/internal/services"
)

const mediaFilesField = "rail_sathi_complain_media_files"

// requestForm is the decoded body of a form request: either multipart or
// url-encoded.
type requestForm struct {
	values url.Values
	files  []services.MediaFile
}

// parseForm decodes multipart and url-encoded bodies for every method.
// net/http skips url-encoded bodies on DELETE, so those are read here.
// The whole body is capped at maxBytes.
func parseForm(c *gin.Context, maxBytes int64) (*requestForm, error) {
	r := c.Request
	r.Body = http.MaxBytesReader(c.Writer, r.Body, maxBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			if isTooLarge(err) {
				return nil, bodyTooLarge(maxBytes)
			}
			return nil, apierr.Validation("invalid_multipart_form", err.Error())
		}
		out := &requestForm{values: url.Values{}}
		for k, v := range r.MultipartForm.Value {
			out.values[k] = v
		}
		files, err := readMediaFiles(r, maxBytes)
		if err != nil {
			return nil, err
		}
		out.files = files
		return out, nil
	case "application/x-www-form-urlencoded":
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			if isTooLarge(err) {
				return nil, bodyTooLarge(maxBytes)
			}
			return nil, apierr.Validation("invalid_form", err.Error())
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, apierr.Validation("invalid_form", err.Error())
		}
		return &requestForm{values: values}, nil
	default:
		return &requestForm{values: url.Values{}}, nil
	}
}

func readMediaFiles(r *http.Request, maxBytes int64) ([]services.MediaFile, error) {
	headers := r.MultipartForm.File[mediaFilesField]
	files := make([]services.MediaFile, 0, len(headers))
	for _, fh := range headers {
		if strings.TrimSpace(fh.Filename) == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apierr.Validation("invalid_media_file", fmt.Sprintf("cannot open %s: %v", fh.Filename, err))
		}
		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		_ = f.Close()
		if err != nil {
			return nil, apierr.Validation("invalid_media_file", fmt.Sprintf("cannot read %s: %v", fh.Filename, err))
		}
		if int64(len(data)) > maxBytes {
			return nil, apierr.Validation("media_file_too_large", fmt.Sprintf("%s exceeds %d bytes", fh.Filename, maxBytes))
		}
		contentType := strings.TrimSpace(fh.Header.Get("Content-Type"))
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		files = append(files, services.MediaFile{Filename: fh.Filename, ContentType: contentType, Data: data})
	}
	return files, nil
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

func bodyTooLarge(maxBytes int64) error {
	return apierr.New(http.StatusRequestEntityTooLarge, "request_too_large", fmt.Errorf("request body exceeds %d bytes", maxBytes))
}

// str returns the first value under key, or nil when the key is absent.
func (f *requestForm) str(key string) *string {
	v, ok := f.values[key]
	if !ok || len(v) == 0 {
		return nil
	}
	s := v[0]
	return &s
}

func (f *requestForm) text(key string) string {
	if s := f.str(key); s != nil {
		return strings.TrimSpace(*s)
	}
	return ""
}

func (f *requestForm) int64Value(key string) (*int64, error) {
	s := f.str(key)
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*s), 10, 64)
	if err != nil {
		return nil, apierr.Validation("invalid_"+key, key+" must be an integer")
	}
	return &n, nil
}

func (f *requestForm) intValue(key string) (*int, error) {
	n, err := f.int64Value(key)
	if err != nil || n == nil {
		return nil, err
	}
	v := int(*n)
	return &v, nil
}

// complaintFields collects the complaint columns present in the form.
func (f *requestForm) complaintFields() (services.ComplaintFields, error) {
	out := services.ComplaintFields{
		PNRNumber:           f.str("pnr_number"),
		IsPNRValidated:      f.str("is_pnr_validated"),
		Name:                f.str("name"),
		MobileNumber:        f.str("mobile_number"),
		ComplainType:        f.str("complain_type"),
		ComplainDescription: f.str("complain_description"),
		ComplainDate:        f.str("complain_date"),
		ComplainStatus:      f.str("complain_status"),
		TrainNumber:         f.str("train_number"),
		TrainName:           f.str("train_name"),
		Coach:               f.str("coach"),
	}
	var err error
	if out.TrainID, err = f.int64Value("train_id"); err != nil {
		return out, err
	}
	if out.BerthNo, err = f.intValue("berth_no"); err != nil {
		return out, err
	}
	return out, nil
}

func (f *requestForm) actor() services.Actor {
	return services.Actor{Name: f.text("name"), MobileNumber: f.text("mobile_number")}
}

// requireActor is the holder identity a deletion must carry.
func (f *requestForm) requireActor() (services.Actor, error) {
	a := f.actor()
	if a.Name == "" || a.MobileNumber == "" {
		return a, apierr.Validation("actor_required", "name and mobile_number are required")
	}
	return a, nil
}

// mediaIDs accepts repeated values, comma separated values, or both.
func (f *requestForm) mediaIDs(key string) ([]int64, error) {
	var ids []int64
	for _, raw := range f.values[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, apierr.Validation("invalid_media_id", fmt.Sprintf("invalid media id %q", part))
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
