package ledger

import (
	"context"
	"fmt"

	"github.com/mautops/ledger-bridge/internal/utils"
)

// Locator 按 工作区 -> 文件夹 -> 表格 的路径定位配置中的表格
type Locator struct {
	client      Client
	workspaceID int64
}

// NewLocator 创建表格定位器
func NewLocator(client Client, workspaceID int64) *Locator {
	return &Locator{client: client, workspaceID: workspaceID}
}

// FindSheet 定位表格并返回其完整内容（列与行）
// 工作区、文件夹或表格不存在时返回 ConfigurationError
func (l *Locator) FindSheet(ctx context.Context, folderName, sheetName string) (*Sheet, error) {
	workspaces, err := l.client.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	found := false
	for _, ws := range workspaces {
		if ws.ID == l.workspaceID {
			found = true
			break
		}
	}
	if !found {
		return nil, utils.NewConfigurationError("workspace %d not found", l.workspaceID)
	}

	workspace, err := l.client.GetWorkspace(ctx, l.workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	var folderID int64
	for _, f := range workspace.Folders {
		if f.Name == folderName {
			folderID = f.ID
			break
		}
	}
	if folderID == 0 {
		return nil, utils.NewConfigurationError("folder %q not found in workspace %q", folderName, workspace.Name)
	}

	folder, err := l.client.GetFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	var sheetID int64
	for _, s := range folder.Sheets {
		if s.Name == sheetName {
			sheetID = s.ID
			break
		}
	}
	if sheetID == 0 {
		return nil, utils.NewConfigurationError("sheet %q not found in folder %q", sheetName, folderName)
	}

	sheet, err := l.client.GetSheet(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	return sheet, nil
}

// ColumnIndex 列标题到列 ID 的索引
type ColumnIndex map[string]int64

// NewColumnIndex 从表格列定义构建索引
func NewColumnIndex(sheet *Sheet) ColumnIndex {
	idx := make(ColumnIndex, len(sheet.Columns))
	for _, c := range sheet.Columns {
		idx[c.Title] = c.ID
	}
	return idx
}

// Require 返回列 ID,列不存在时返回 ConfigurationError
func (idx ColumnIndex) Require(title string) (int64, error) {
	id, ok := idx[title]
	if !ok {
		return 0, utils.NewConfigurationError("column %q not found", title)
	}
	return id, nil
}
