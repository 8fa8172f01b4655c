package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParentRef(t *testing.T) {
	tests := []struct {
		in      string
		want    ParentRef
		wantErr bool
	}{
		{in: "", want: Root()},
		{in: "0", want: Root()},
		{in: " 12 ", want: InFolder(12)},
		{in: "-3", wantErr: true},
		{in: "5f1d7e", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseParentRef(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParentRef_UnmarshalJSON(t *testing.T) {
	var in struct {
		ParentID ParentRef `json:"parentId"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{}`), &in))
	assert.True(t, in.ParentID.IsRoot())

	require.NoError(t, json.Unmarshal([]byte(`{"parentId": 0}`), &in))
	assert.True(t, in.ParentID.IsRoot())

	require.NoError(t, json.Unmarshal([]byte(`{"parentId": null}`), &in))
	assert.True(t, in.ParentID.IsRoot())

	require.NoError(t, json.Unmarshal([]byte(`{"parentId": 7}`), &in))
	id, ok := in.ParentID.FolderID()
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	require.NoError(t, json.Unmarshal([]byte(`{"parentId": "9"}`), &in))
	assert.Equal(t, InFolder(9), in.ParentID)

	err := json.Unmarshal([]byte(`{"parentId": "abc"}`), &in)
	assert.ErrorIs(t, err, ErrInvalidParent)
}

func TestParentRef_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(FileView{ID: 3, OwnerID: 1, Name: "a", Kind: KindFolder, ParentID: Root()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"ownerId":1,"name":"a","kind":"folder","isPublic":false,"parentId":0}`, string(b))

	b, err = json.Marshal(FileView{ID: 4, OwnerID: 1, Name: "b.png", Kind: KindImage, IsPublic: true, ParentID: InFolder(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"ownerId":1,"name":"b.png","kind":"image","isPublic":true,"parentId":3}`, string(b))
}

func TestParentRef_ValueScan(t *testing.T) {
	v, err := Root().Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = InFolder(8).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(8), v)

	var p ParentRef
	require.NoError(t, p.Scan(nil))
	assert.True(t, p.IsRoot())

	require.NoError(t, p.Scan(int64(8)))
	assert.Equal(t, InFolder(8), p)
}

func TestKind(t *testing.T) {
	assert.True(t, KindFolder.Valid())
	assert.True(t, KindImage.Valid())
	assert.False(t, Kind("video").Valid())

	assert.False(t, KindFolder.HasContent())
	assert.True(t, KindFile.HasContent())
	assert.True(t, KindImage.HasContent())
}

func TestViews_NeverNil(t *testing.T) {
	views := Views(nil)
	assert.NotNil(t, views)
	assert.Len(t, views, 0)
}
