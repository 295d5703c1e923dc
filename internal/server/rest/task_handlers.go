package rest

import (
	"net/http"

	"github.com/dmitrijs2005/tasktrack/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	msgNoTasks     = "No task found for this user."
	msgTasksFound  = "All tasks found successfully for this user."
	msgTaskAdded   = "Task added successfully."
	msgTaskUpdated = "Task updated successfully."
	msgTaskDeleted = "Task deleted successfully."
)

func (h *Handler) getAllTasks(c *gin.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	tasks, err := h.tasks.List(c.Request.Context(), id.UserID)
	if err != nil {
		return err
	}

	msg := msgTasksFound
	if len(tasks) == 0 {
		msg = msgNoTasks
	}
	respond(c, http.StatusOK, tasks, msg)
	return nil
}

func (h *Handler) addTask(c *gin.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var in services.AddTaskInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}

	task, err := h.tasks.Add(c.Request.Context(), id.UserID, in)
	if err != nil {
		return err
	}

	respond(c, http.StatusCreated, task, msgTaskAdded)
	return nil
}

func (h *Handler) updateTask(c *gin.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	var in services.UpdateTaskInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}

	task, err := h.tasks.Update(c.Request.Context(), id.UserID, c.Param("taskId"), in)
	if err != nil {
		return err
	}

	respond(c, http.StatusOK, task, msgTaskUpdated)
	return nil
}

func (h *Handler) deleteTask(c *gin.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	taskID := c.Param("taskId")
	if err := h.tasks.Delete(c.Request.Context(), id.UserID, taskID); err != nil {
		return err
	}

	respond(c, http.StatusOK, gin.H{"deleteTaskId": taskID}, msgTaskDeleted)
	return nil
}
