package docindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault-web-server/internal/docindex"
	"docvault-web-server/internal/model"
)

func sampleList() model.DescriptorList {
	return model.DescriptorList{
		{DocID: "doc-1", DocName: "report.pdf", DocSize: 1024, IsDocShow: true},
		{DocID: "doc-legacy", Legacy: true},
		{DocID: "doc-2", DocName: "photo.png", DocSize: 2048, IsDocShow: false},
	}
}

func TestAppend(t *testing.T) {
	list := sampleList()
	updated := docindex.Append(list, model.DocumentDescriptor{DocID: "doc-3", IsDocShow: true})

	assert.Len(t, updated, 4)
	assert.Equal(t, "doc-3", updated[3].DocID)
	// исходный список не тронут
	assert.Len(t, list, 3)
}

func TestRemove(t *testing.T) {
	updated := docindex.Remove(sampleList(), "doc-1")
	assert.Len(t, updated, 2)

	// запись старой формы тоже удаляется по идентификатору
	updated = docindex.Remove(sampleList(), "doc-legacy")
	assert.Len(t, updated, 2)

	// отсутствующий идентификатор не ошибка
	updated = docindex.Remove(sampleList(), "no-such-doc")
	assert.Len(t, updated, 3)

	// повторное удаление идемпотентно
	updated = docindex.Remove(docindex.Remove(sampleList(), "doc-1"), "doc-1")
	assert.Len(t, updated, 2)
}

func TestSetVisibility(t *testing.T) {
	updated, err := docindex.SetVisibility(sampleList(), "doc-2", true)
	require.NoError(t, err)
	assert.True(t, updated[2].IsDocShow)
	// остальные поля не тронуты
	assert.Equal(t, "photo.png", updated[2].DocName)
}

func TestSetVisibility_UpgradesLegacyRecord(t *testing.T) {
	updated, err := docindex.SetVisibility(sampleList(), "doc-legacy", true)
	require.NoError(t, err)

	upgraded := updated[1]
	assert.False(t, upgraded.Legacy)
	assert.True(t, upgraded.IsDocShow)
	assert.Equal(t, "doc-legacy", upgraded.DocID)
	// остальные поля неоткуда восстановить, остаются пустыми
	assert.Empty(t, upgraded.DocName)
	assert.Zero(t, upgraded.DocSize)
}

func TestSetVisibility_NotFound(t *testing.T) {
	_, err := docindex.SetVisibility(sampleList(), "no-such-doc", true)
	assert.ErrorIs(t, err, docindex.ErrDescriptorNotFound)
}

func TestSetVisibility_DoesNotMutateInput(t *testing.T) {
	list := sampleList()
	_, err := docindex.SetVisibility(list, "doc-2", true)
	require.NoError(t, err)
	assert.False(t, list[2].IsDocShow)
}

func TestVisibleOnly(t *testing.T) {
	visible := docindex.VisibleOnly(sampleList())

	// скрытые и устаревшие записи отфильтрованы
	require.Len(t, visible, 1)
	assert.Equal(t, "doc-1", visible[0].DocID)
}
