package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/carbonlog/internal/middleware"
	"github.com/hitoshi/carbonlog/internal/model"
)

// ActivityServiceInterface は活動記録ハンドラーが必要とするサービスインターフェース。
type ActivityServiceInterface interface {
	CreateElectricityLog(ctx context.Context, ownerID string, usageKWh float64) (*model.ElectricityRecord, error)
	CreateTransportLog(ctx context.Context, ownerID string, vehicleType model.VehicleType, distanceKm, fuelEfficiency float64) (*model.TransportRecord, error)
	CreatePurchaseLog(ctx context.Context, ownerID, item, category string, amount float64) (*model.PurchaseRecord, error)
	ListElectricityLogs(ctx context.Context, ownerID string) ([]model.ElectricityRecord, error)
	ListTransportLogs(ctx context.Context, ownerID string) ([]model.TransportRecord, error)
	ListPurchaseLogs(ctx context.Context, ownerID string) ([]model.PurchaseRecord, error)
}

// ActivityHandler は活動記録のHTTPハンドラー。
type ActivityHandler struct {
	service ActivityServiceInterface
}

// NewActivityHandler はActivityHandlerを生成する。
func NewActivityHandler(service ActivityServiceInterface) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// createElectricityRequest は電力使用記録の作成リクエストのボディ。
type createElectricityRequest struct {
	ElectricityUsage float64 `json:"electricity_usage"`
}

// createTransportRequest は移動記録の作成リクエストのボディ。
type createTransportRequest struct {
	VehicleType    string  `json:"vehicle_type"`
	Distance       float64 `json:"distance"`
	FuelEfficiency float64 `json:"fuel_efficiency"`
}

// createPurchaseRequest は購入記録の作成リクエストのボディ。
type createPurchaseRequest struct {
	Item     string  `json:"item"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// electricityLogResponse は電力使用記録のAPIレスポンス。
type electricityLogResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Date             time.Time `json:"date"`
	ElectricityUsage float64   `json:"electricity_usage"`
	Emission         float64   `json:"emission"`
}

// transportLogResponse は移動記録のAPIレスポンス。
type transportLogResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Date           time.Time `json:"date"`
	VehicleType    string    `json:"vehicle_type"`
	Distance       float64   `json:"distance"`
	FuelEfficiency float64   `json:"fuel_efficiency"`
	Emission       float64   `json:"emission"`
}

// purchaseLogResponse は購入記録のAPIレスポンス。
type purchaseLogResponse struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Date     time.Time `json:"date"`
	Item     string    `json:"item"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Emission float64   `json:"emission"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreateElectricityLog は電力使用記録を作成する。
// POST /api/logs/electricity
func (h *ActivityHandler) CreateElectricityLog(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwnerID(w, r)
	if !ok {
		return
	}

	var req createElectricityRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	rec, err := h.service.CreateElectricityLog(r.Context(), ownerID, req.ElectricityUsage)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toElectricityResponse(rec))
}

// ListElectricityLogs は電力使用記録の一覧を日時降順で返す。
// GET /api/logs/electricity
func (h *ActivityHandler) ListElectricityLogs(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwnerID(w, r)
	if !ok {
		return
	}

	records, err := h.service.ListElectricityLogs(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]electricityLogResponse, 0, len(records))
	for i := range records {
		resp = append(resp, toElectricityResponse(&records[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreateTransportLog は移動記録を作成する。
// POST /api/logs/transport
func (h *ActivityHandler) CreateTransportLog(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwnerID(w, r)
	if !ok {
		return
	}

	var req createTransportRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.VehicleType == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidVehicleTypeError())
		return
	}

	rec, err := h.service.CreateTransportLog(r.Context(), ownerID, model.VehicleType(req.VehicleType), req.Distance, req.FuelEfficiency)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toTransportResponse(rec))
}

// ListTransportLogs は移動記録の一覧を日時降順で返す。
// GET /api/logs/transport
func (h *ActivityHandler) ListTransportLogs(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwnerID(w, r)
	if !ok {
		return
	}

	records, err := h.service.ListTransportLogs(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]transportLogResponse, 0, len(records))
	for i := range records {
		resp = append(resp, toTransportResponse(&records[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CreatePurchaseLog は購入記録を作成する。
// POST /api/logs/purchase
func (h *ActivityHandler) CreatePurchaseLog(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwnerID(w, r)
	if !ok {
		return
	}

	var req createPurchaseRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	rec, err := h.service.CreatePurchaseLog(r.Context(), ownerID, req.Item, req.Category, req.Amount)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPurchaseResponse(rec))
}

// ListPurchaseLogs は購入記録の一覧を日時降順で返す。
// GET /api/logs/purchase
func (h *ActivityHandler) ListPurchaseLogs(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwnerID(w, r)
	if !ok {
		return
	}

	records, err := h.service.ListPurchaseLogs(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]purchaseLogResponse, 0, len(records))
	for i := range records {
		resp = append(resp, toPurchaseResponse(&records[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- ヘルパー関数 ---

// toElectricityResponse はmodel.ElectricityRecordからAPIレスポンスに変換する。
func toElectricityResponse(rec *model.ElectricityRecord) electricityLogResponse {
	return electricityLogResponse{
		ID:               rec.ID,
		UserID:           rec.OwnerID,
		Date:             rec.Timestamp,
		ElectricityUsage: rec.ElectricityUsage,
		Emission:         rec.Emission,
	}
}

// toTransportResponse はmodel.TransportRecordからAPIレスポンスに変換する。
func toTransportResponse(rec *model.TransportRecord) transportLogResponse {
	return transportLogResponse{
		ID:             rec.ID,
		UserID:         rec.OwnerID,
		Date:           rec.Timestamp,
		VehicleType:    string(rec.VehicleType),
		Distance:       rec.Distance,
		FuelEfficiency: rec.FuelEfficiency,
		Emission:       rec.Emission,
	}
}

// toPurchaseResponse はmodel.PurchaseRecordからAPIレスポンスに変換する。
func toPurchaseResponse(rec *model.PurchaseRecord) purchaseLogResponse {
	return purchaseLogResponse{
		ID:       rec.ID,
		UserID:   rec.OwnerID,
		Date:     rec.Timestamp,
		Item:     rec.Item,
		Category: rec.Category,
		Amount:   rec.Amount,
		Emission: rec.Emission,
	}
}

// requireOwnerID はリクエストコンテキストから認証済みオーナーIDを取得する。
// 取得できない場合は401を書き込みfalseを返す。
func requireOwnerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, err := middleware.OwnerIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
			Code:     "UNAUTHORIZED",
			Message:  "認証が必要です。",
			Category: "auth",
			Action:   "ログインしてください。",
		})
		return "", false
	}
	return ownerID, true
}

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
// 失敗した場合は400を書き込みfalseを返す。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの解析に失敗しました。",
			Category: "validation",
			Action:   "正しいJSON形式でリクエストしてください。",
		})
		return false
	}
	return true
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidInput, model.ErrCodeInvalidVehicle, model.ErrCodeInvalidWindow, "INVALID_EMAIL":
		return http.StatusBadRequest
	case model.ErrCodeFactorNotFound:
		return http.StatusUnprocessableEntity
	case model.ErrCodeDuplicateFactor:
		return http.StatusConflict
	case model.ErrCodeSourceUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrCodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
