package model

type HomeRequest struct{}

type HomeResponse struct {
	AppName string `json:"app_name"`
	Env     string `json:"env"`
}
