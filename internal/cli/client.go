package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/render"
	"github.com/do-nan-fer/Garden-CLI/internal/telemetry"
)

// ErrNotFound — backend ответил 404.
var ErrNotFound = errors.New("not found")

var tracer = otel.Tracer("garden-cli/client")

// APIError — ошибка, которую вернул backend (HTTP >= 400).
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("API error: HTTP %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("API error: HTTP %d", e.StatusCode)
	}
}

// Unwrap позволяет проверять 404 через errors.Is(err, ErrNotFound).
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// errorResponse — тело ошибки backend'а. Поддерживаются оба формата:
// {"detail": "..."} и {"error": {"code": "...", "message": "..."}}.
type errorResponse struct {
	Detail string `json:"detail"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для garden API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption настраивает Client.
type ClientOption func(*Client)

// WithTimeout задаёт таймаут одного запроса.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMetrics добавляет Prometheus-инструментацию транспорта.
func WithMetrics(m *telemetry.Metrics) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = m.InstrumentTransport(c.httpClient.Transport)
	}
}

// WithLogger задаёт логгер клиента.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает адрес backend'а.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// --- Plants ---

// ListPlants возвращает все plants.
func (c *Client) ListPlants(ctx context.Context) ([]domain.Plant, error) {
	var plants []domain.Plant
	err := c.get(ctx, "/plants/", &plants)
	return plants, err
}

// GetPlant возвращает plant по ID.
func (c *Client) GetPlant(ctx context.Context, id int) (*domain.Plant, error) {
	var plant domain.Plant
	if err := c.get(ctx, entityPath("plants", id), &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

// CreatePlant создаёт plant.
func (c *Client) CreatePlant(ctx context.Context, in domain.PlantInput) (*domain.Plant, error) {
	var plant domain.Plant
	if err := c.post(ctx, "/plants/", in, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

// UpdatePlant заменяет редактируемые поля plant.
func (c *Client) UpdatePlant(ctx context.Context, id int, in domain.PlantInput) (*domain.Plant, error) {
	var plant domain.Plant
	if err := c.put(ctx, entityPath("plants", id), in, &plant); err != nil {
		return nil, err
	}
	return &plant, nil
}

// DeletePlant удаляет plant.
func (c *Client) DeletePlant(ctx context.Context, id int) error {
	return c.delete(ctx, entityPath("plants", id))
}

// PlantData возвращает последние данные plant как Record с исходным порядком полей.
func (c *Client) PlantData(ctx context.Context, id int) (render.Record, error) {
	body, err := c.raw(ctx, http.MethodGet, entityPath("plants", id)+"data/", nil)
	if err != nil {
		return nil, err
	}
	rec, err := render.DecodeRecord(body)
	if err != nil {
		return nil, fmt.Errorf("plant %d data: %w", id, err)
	}
	return rec, nil
}

// --- Packages ---

// ListPackages возвращает packages. Если plantID > 0 — только для этого plant.
func (c *Client) ListPackages(ctx context.Context, plantID int) ([]domain.Package, error) {
	path := "/packages/"
	if plantID > 0 {
		path += "?" + url.Values{"plant_id": {strconv.Itoa(plantID)}}.Encode()
	}

	var packages []domain.Package
	err := c.get(ctx, path, &packages)
	return packages, err
}

// GetPackage возвращает package по ID.
func (c *Client) GetPackage(ctx context.Context, id int) (*domain.Package, error) {
	var pkg domain.Package
	if err := c.get(ctx, entityPath("packages", id), &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// CreatePackage создаёт package.
func (c *Client) CreatePackage(ctx context.Context, in domain.PackageInput) (*domain.Package, error) {
	var pkg domain.Package
	if err := c.post(ctx, "/packages/", in, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// UpdatePackage заменяет редактируемые поля package.
func (c *Client) UpdatePackage(ctx context.Context, id int, in domain.PackageInput) (*domain.Package, error) {
	var pkg domain.Package
	if err := c.put(ctx, entityPath("packages", id), in, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// DeletePackage удаляет package.
func (c *Client) DeletePackage(ctx context.Context, id int) error {
	return c.delete(ctx, entityPath("packages", id))
}

// --- Workers ---

// ListWorkers возвращает всех workers.
func (c *Client) ListWorkers(ctx context.Context) ([]domain.Worker, error) {
	var workers []domain.Worker
	err := c.get(ctx, "/workers/", &workers)
	return workers, err
}

// GetWorker возвращает worker'а по ID.
func (c *Client) GetWorker(ctx context.Context, id int) (*domain.Worker, error) {
	var worker domain.Worker
	if err := c.get(ctx, entityPath("workers", id), &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// CreateWorker создаёт worker'а.
func (c *Client) CreateWorker(ctx context.Context, in domain.WorkerInput) (*domain.Worker, error) {
	var worker domain.Worker
	if err := c.post(ctx, "/workers/", in, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// UpdateWorker заменяет редактируемые поля worker'а.
func (c *Client) UpdateWorker(ctx context.Context, id int, in domain.WorkerInput) (*domain.Worker, error) {
	var worker domain.Worker
	if err := c.put(ctx, entityPath("workers", id), in, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// DeleteWorker удаляет worker'а.
func (c *Client) DeleteWorker(ctx context.Context, id int) error {
	return c.delete(ctx, entityPath("workers", id))
}

// StartWorker запускает worker'а.
func (c *Client) StartWorker(ctx context.Context, id int) (*domain.Worker, error) {
	var worker domain.Worker
	if err := c.post(ctx, entityPath("workers", id)+"start/", nil, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// StopWorker останавливает worker'а.
func (c *Client) StopWorker(ctx context.Context, id int) (*domain.Worker, error) {
	var worker domain.Worker
	if err := c.post(ctx, entityPath("workers", id)+"stop/", nil, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// ListPicks возвращает picks worker'а.
func (c *Client) ListPicks(ctx context.Context, workerID int) ([]domain.Pick, error) {
	var picks []domain.Pick
	err := c.get(ctx, entityPath("workers", workerID)+"picks/", &picks)
	return picks, err
}

// AddPick назначает worker'у пару plant/package.
func (c *Client) AddPick(ctx context.Context, workerID int, in domain.PickInput) (*domain.Pick, error) {
	var pick domain.Pick
	if err := c.post(ctx, entityPath("workers", workerID)+"picks/", in, &pick); err != nil {
		return nil, err
	}
	return &pick, nil
}

// RemovePick снимает pick с worker'а.
func (c *Client) RemovePick(ctx context.Context, workerID, pickID int) error {
	return c.delete(ctx, entityPath("workers", workerID)+"picks/"+strconv.Itoa(pickID)+"/")
}

// --- Actions ---

// ListActions возвращает все actions.
func (c *Client) ListActions(ctx context.Context) ([]domain.Action, error) {
	var actions []domain.Action
	err := c.get(ctx, "/actions/", &actions)
	return actions, err
}

// GetAction возвращает action по ID.
func (c *Client) GetAction(ctx context.Context, id int) (*domain.Action, error) {
	var action domain.Action
	if err := c.get(ctx, entityPath("actions", id), &action); err != nil {
		return nil, err
	}
	return &action, nil
}

// CreateAction создаёт action.
func (c *Client) CreateAction(ctx context.Context, in domain.ActionInput) (*domain.Action, error) {
	var action domain.Action
	if err := c.post(ctx, "/actions/", in, &action); err != nil {
		return nil, err
	}
	return &action, nil
}

// UpdateAction заменяет редактируемые поля action.
func (c *Client) UpdateAction(ctx context.Context, id int, in domain.ActionInput) (*domain.Action, error) {
	var action domain.Action
	if err := c.put(ctx, entityPath("actions", id), in, &action); err != nil {
		return nil, err
	}
	return &action, nil
}

// DeleteAction удаляет action.
func (c *Client) DeleteAction(ctx context.Context, id int) error {
	return c.delete(ctx, entityPath("actions", id))
}

// RunAction выполняет action и возвращает результат как Record.
func (c *Client) RunAction(ctx context.Context, id int, args map[string]string) (render.Record, error) {
	var body any
	if len(args) > 0 {
		body = map[string]any{"args": args}
	}

	resp, err := c.raw(ctx, http.MethodPost, entityPath("actions", id)+"run/", body)
	if err != nil {
		return nil, err
	}
	rec, err := render.DecodeRecord(resp)
	if err != nil {
		return nil, fmt.Errorf("action %d result: %w", id, err)
	}
	return rec, nil
}

// --- HTTP helpers ---

func entityPath(collection string, id int) string {
	return "/" + collection + "/" + strconv.Itoa(id) + "/"
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body any, result any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.raw(ctx, http.MethodDelete, path, nil)
	return err
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	data, err := c.raw(ctx, method, path, body)
	if err != nil {
		return err
	}

	// 204 No Content или пустое тело
	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response from %s %s: %w", method, path, err)
	}
	return nil
}

// raw выполняет запрос и возвращает тело успешного ответа.
func (c *Client) raw(ctx context.Context, method, path string, body any) (_ []byte, err error) {
	requestID := uuid.NewString()

	ctx, span := tracer.Start(ctx, "garden-api",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("garden.path", path),
			attribute.String("garden.request_id", requestID),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if err := checkError(resp.StatusCode, data); err != nil {
		return nil, err
	}
	return data, nil
}

func checkError(status int, body []byte) error {
	if status < 400 {
		return nil
	}

	apiErr := &APIError{StatusCode: status}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		apiErr.Code = er.Error.Code
		apiErr.Message = er.Error.Message
		if apiErr.Message == "" {
			apiErr.Message = er.Detail
		}
	}
	return apiErr
}
