package models

import "time"

// Project groups datasets, trained models and deployments under one record
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Datasets    []string  `json:"datasets"`
	Models      []string  `json:"models"`
	Deployments []string  `json:"deployments"`
}
