package types

type ServiceResp struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

type StatusResp struct {
	Status   string            `json:"status"`
	Models   string            `json:"models"`
	Registry map[string]string `json:"registry,omitempty"`
}

type VideoReq struct {
	Image string `json:"image"`
}

type VideoResp struct {
	Success       bool    `json:"success"`
	Emotion       string  `json:"emotion"`
	Confidence    float64 `json:"confidence"`
	FacesDetected int     `json:"faces_detected"`
}

// NoFaceResp is the reply when a frame decodes but holds no face.
type NoFaceResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AudioReq struct {
	Text string `json:"text"`
}

type AudioResp struct {
	Success    bool    `json:"success"`
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Text       string  `json:"text"`
}

type MultimodalReq struct {
	Image string `json:"image"`
	Text  string `json:"text"`
}

type EmotionResult struct {
	Emotion       string  `json:"emotion"`
	Confidence    float64 `json:"confidence"`
	Modality      string  `json:"modality"`
	FacesDetected int     `json:"faces_detected,omitempty"`
	Text          string  `json:"text,omitempty"`
}

type MultimodalResp struct {
	Success bool                     `json:"success"`
	Results map[string]EmotionResult `json:"results"`
}

type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type UploadResp struct {
	SpokenText string         `json:"spoken_text"`
	Emotions   []EmotionScore `json:"emotions"`
}

type ErrorResp struct {
	Error string `json:"error"`
}
