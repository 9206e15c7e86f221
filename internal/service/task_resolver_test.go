package service_test

import (
	"context"
	"testing"

	"github.com/mautops/ledger-bridge/internal/logger"
	"github.com/mautops/ledger-bridge/internal/service"
	"github.com/mautops/ledger-bridge/internal/tasksystem"
	"github.com/mautops/ledger-bridge/internal/tasksystem/mocks"
	"github.com/mautops/ledger-bridge/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// TestResolveTask_ParentWalk 测试子任务沿父链找到项目,返回原始任务 ID
func TestResolveTask_ParentWalk(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	gomock.InOrder(
		client.EXPECT().GetTask(gomock.Any(), "111").Return(&tasksystem.Task{GID: "111", Name: "Subtask", Parent: &tasksystem.Ref{GID: "100"}}, nil),
		client.EXPECT().GetTask(gomock.Any(), "100").Return(&tasksystem.Task{GID: "100", Name: "Parent", Projects: []tasksystem.Ref{{GID: "P"}, {GID: "Q"}}}, nil),
		client.EXPECT().GetProject(gomock.Any(), "P").Return(&tasksystem.Project{GID: "P", Name: "2024-001 - Acme Build"}, nil),
	)

	details, err := service.NewTaskResolver(client, logger.Discard()).ResolveTask(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, "111", details.TaskID)
	assert.Equal(t, "Subtask", details.TaskName)
	assert.Equal(t, "P", details.ProjectID)
	assert.Equal(t, "2024-001", details.ProjectNumber)
	assert.Equal(t, "Acme Build", details.ProjectName)
}

// TestResolveTask_NoProject 测试没有项目也没有父任务
func TestResolveTask_NoProject(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().GetTask(gomock.Any(), "111").Return(&tasksystem.Task{GID: "111", Name: "Loose"}, nil)

	details, err := service.NewTaskResolver(client, logger.Discard()).ResolveTask(context.Background(), "111")
	require.NoError(t, err)
	assert.Equal(t, "111", details.TaskID)
	assert.Empty(t, details.ProjectID)
	assert.Empty(t, details.ProjectNumber)
	assert.Empty(t, details.ProjectName)
	assert.False(t, details.HasProject())
}

// TestResolveTask_HopLimit 测试最多读取 5 个任务
func TestResolveTask_HopLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	chain := []string{"t0", "t1", "t2", "t3", "t4", "t5"}
	for i := 0; i < service.MaxParentHops; i++ {
		client.EXPECT().GetTask(gomock.Any(), chain[i]).
			Return(&tasksystem.Task{GID: chain[i], Name: chain[i], Parent: &tasksystem.Ref{GID: chain[i+1]}}, nil)
	}

	details, err := service.NewTaskResolver(client, logger.Discard()).ResolveTask(context.Background(), "t0")
	require.NoError(t, err)
	assert.Equal(t, "t0", details.TaskID)
	assert.Equal(t, "t0", details.TaskName)
	assert.Empty(t, details.ProjectID)
}

// TestResolveTask_NotFound 测试任务不存在
func TestResolveTask_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().GetTask(gomock.Any(), "404").Return(nil, &utils.NotFoundError{Kind: "task", ID: "404"})

	_, err := service.NewTaskResolver(client, logger.Discard()).ResolveTask(context.Background(), "404")
	require.Error(t, err)
	assert.True(t, utils.IsNotFound(err))
}

// TestSplitProjectName 测试项目名拆分
func TestSplitProjectName(t *testing.T) {
	tests := []struct {
		raw, number, name string
	}{
		{"2024-001 - Acme Build", "2024-001", "Acme Build"},
		{"Internal", "Internal", ""},
		{"A - B - C", "A", "B - C"},
		{"", "", ""},
		{"X-Y", "X-Y", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			number, name := service.SplitProjectName(tt.raw)
			assert.Equal(t, tt.number, number)
			assert.Equal(t, tt.name, name)
		})
	}
}

// TestResolveUser 测试用户查询
func TestResolveUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().GetUser(gomock.Any(), "u1").Return(&tasksystem.User{GID: "u1", Email: "kiss.anna@example.com", Name: "Kiss Anna"}, nil)
	client.EXPECT().GetUser(gomock.Any(), "u2").Return(nil, &utils.UpstreamError{Service: "task_system", Operation: "get user", StatusCode: 500})

	svc := service.NewUserService(client)

	user, err := svc.ResolveUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "kiss.anna@example.com", user.Email)

	_, err = svc.ResolveUser(context.Background(), "u2")
	assert.True(t, utils.IsUpstream(err))
}
