package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"mnist-ai/classifier"
	"mnist-ai/database"
	"mnist-ai/dataset"
	"mnist-ai/stats"
	"mnist-ai/trainer"
)

// WebUI представляет веб-интерфейс для обучения и распознавания цифр
type WebUI struct {
	classifier *classifier.Classifier
	statistics *stats.Statistics
	db         *database.Database
	trainSet   *dataset.Dataset
	testSet    *dataset.Dataset
	mutex      sync.Mutex

	// Для фонового обучения
	trainRunning bool
	manager      *trainer.TrainingManager
}

// NewWebUI создает новый веб-интерфейс.
// Датасеты могут быть nil, тогда обучение через веб недоступно
func NewWebUI(cl *classifier.Classifier, statistics *stats.Statistics, db *database.Database, trainSet, testSet *dataset.Dataset) *WebUI {
	return &WebUI{
		classifier: cl,
		statistics: statistics,
		db:         db,
		trainSet:   trainSet,
		testSet:    testSet,
	}
}

// Start запускает веб-сервер
func (w *WebUI) Start(port int) error {
	http.HandleFunc("/", w.handleIndex)
	http.HandleFunc("/api/status", w.handleStatus)
	http.HandleFunc("/api/history", w.handleHistory)
	http.HandleFunc("/api/summary", w.handleSummary)
	http.HandleFunc("/api/predict", w.handlePredict)
	http.HandleFunc("/api/train/start", w.handleTrainStart)
	http.HandleFunc("/api/train/stop", w.handleTrainStop)

	addr := fmt.Sprintf(":%d", port)
	fmt.Printf("Starting web server on http://localhost%s\n", addr)

	server := &http.Server{
		Addr:         addr,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// handleIndex возвращает HTML страницу
func (w *WebUI) handleIndex(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.Write([]byte(htmlPage))
}

// StatusResponse представляет текущее состояние сервера
type StatusResponse struct {
	TrainRunning bool    `json:"trainRunning"`
	HasDataset   bool    `json:"hasDataset"`
	TotalRuns    int     `json:"totalRuns"`
	BestAccuracy float64 `json:"bestAccuracy"`
}

// handleStatus возвращает текущее состояние
func (w *WebUI) handleStatus(rw http.ResponseWriter, r *http.Request) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	status := StatusResponse{
		TrainRunning: w.trainRunning,
		HasDataset:   w.trainSet != nil && w.testSet != nil,
	}

	if totalRuns, err := w.db.GetTotalRuns(); err == nil {
		status.TotalRuns = totalRuns
	}
	if best, err := w.db.GetBestAccuracy(); err == nil {
		status.BestAccuracy = best
	}

	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(status); err != nil {
		http.Error(rw, "Failed to encode status", http.StatusInternalServerError)
	}
}

// handleHistory возвращает историю эпох обучения
func (w *WebUI) handleHistory(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(w.statistics.GetEpochs()); err != nil {
		http.Error(rw, "Failed to encode history", http.StatusInternalServerError)
	}
}

// handleSummary возвращает сводку по обучению
func (w *WebUI) handleSummary(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(w.statistics.GetSummary()); err != nil {
		http.Error(rw, "Failed to encode summary", http.StatusInternalServerError)
	}
}

// PredictRequest представляет запрос на распознавание
type PredictRequest struct {
	Pixels []float64 `json:"pixels"`
}

// PredictResponse представляет результат распознавания
type PredictResponse struct {
	Digit      int       `json:"digit"`
	Confidence float64   `json:"confidence"`
	Probs      []float64 `json:"probs"`
}

// handlePredict распознает нарисованную цифру
func (w *WebUI) handlePredict(rw http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}

	w.mutex.Lock()
	digit, confidence, err := w.classifier.Predict(req.Pixels, "web")
	var probs []float64
	if err == nil {
		probs, err = w.classifier.Probabilities(req.Pixels)
	}
	w.mutex.Unlock()

	if err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	resp := PredictResponse{Digit: digit, Confidence: confidence, Probs: probs}
	if err := json.NewEncoder(rw).Encode(resp); err != nil {
		http.Error(rw, "Failed to encode prediction", http.StatusInternalServerError)
	}
}

// TrainRequest представляет запрос на запуск обучения
type TrainRequest struct {
	Epochs    int `json:"epochs"`
	BatchSize int `json:"batchSize"`
}

// handleTrainStart запускает обучение в фоне
func (w *WebUI) handleTrainStart(rw http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Epochs <= 0 {
		req.Epochs = 5
	}
	if req.BatchSize <= 0 {
		req.BatchSize = 32
	}

	w.mutex.Lock()

	if w.trainRunning {
		w.mutex.Unlock()
		http.Error(rw, "Training is already running", http.StatusBadRequest)
		return
	}
	if w.trainSet == nil || w.testSet == nil {
		w.mutex.Unlock()
		http.Error(rw, "Dataset is not loaded", http.StatusBadRequest)
		return
	}

	w.trainRunning = true
	w.manager = trainer.NewTrainingManager(w.classifier.Network, w.trainSet, w.testSet, w.db, w.statistics)
	w.mutex.Unlock()

	// Запускаем обучение в отдельной горутине
	go func() {
		if err := w.manager.Train(req.Epochs, req.BatchSize, true); err != nil {
			fmt.Printf("Ошибка во время обучения: %v\n", err)
		}

		w.mutex.Lock()
		w.trainRunning = false
		w.mutex.Unlock()
	}()

	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(map[string]bool{"success": true})
}

// handleTrainStop останавливает обучение
func (w *WebUI) handleTrainStop(rw http.ResponseWriter, r *http.Request) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.trainRunning || w.manager == nil {
		http.Error(rw, "Training is not running", http.StatusBadRequest)
		return
	}

	w.manager.RequestStop()

	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(map[string]bool{"success": true})
}
