package masks

import "testing"

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		want    Mask
		wantErr bool
	}{
		{name: "track_yoshi.png", want: Mask{Category: CategoryTrack, Subject: "yoshi"}},
		{name: "track_mario_alt.png", want: Mask{Category: CategoryTrack, Subject: "mario"}},
		{name: "pos2_square3.png", want: Mask{Category: CategoryPos, Place: 2, Square: 3}},
		{name: "pos1_square4_final.png", want: Mask{Category: CategoryPos, Place: 1, Square: 4, Final: true}},
		{name: "char_wario_2.png", want: Mask{Category: CategoryChar, Subject: "wario", Square: 2}},
		{name: "item_redshell3_1.png", want: Mask{Category: CategoryItem, Subject: "redshell3", Square: 1}},
		{name: "lakitu_start2.png", want: Mask{Category: CategoryLakitu}},
		{name: "track_.png", wantErr: true},
		{name: "pos5_square1.png", wantErr: true},
		{name: "pos1_square0.png", wantErr: true},
		{name: "pos1_sq1.png", wantErr: true},
		{name: "position.png", wantErr: true},
		{name: "char_mario.png", wantErr: true},
		{name: "item_box_9.png", wantErr: true},
		{name: "readme.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseName(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseName: %v", err)
			}
			tt.want.Name = tt.name
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
