package dto

type CreateTaskDTO struct {
	Title   string `json:"title" binding:"required,min=1"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

type UpdateTaskDTO struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}
