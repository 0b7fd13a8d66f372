package poster

import (
	"testing"
)

func TestSanitizeGameQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cyberpunk.2077.v2.1.Build.12345.Win64-CODEX", "Cyberpunk 2077"},
		{"[FitGirl Repack] Elden Ring (2022) MULTI12", "Elden Ring"},
		{"Hades.v1.38290.GOG", "Hades"},
		{"Doom.Eternal.Update.6.Linux-SKIDROW", "Doom Eternal"},
		{"Half-Life 2", "Half-Life 2"},
		{"Stardew Valley", "Stardew Valley"},
		{"Age.of.Empires.II.1999", "Age of Empires II"},
	}

	for _, tt := range tests {
		if got := SanitizeGameQuery(tt.in); got != tt.want {
			t.Errorf("SanitizeGameQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitArtistTitle(t *testing.T) {
	tests := []struct {
		in         string
		wantArtist string
		wantAlbum  string
	}{
		{"Daft Punk - Discovery", "Daft Punk", "Discovery"},
		{"Daft Punk – Discovery", "Daft Punk", "Discovery"},
		{"Artist: Album - Deluxe", "Artist", "Album - Deluxe"},
		{"Massive Attack | Mezzanine", "Massive Attack", "Mezzanine"},
		{"Discovery", "", "Discovery"},
		{"  Discovery  ", "", "Discovery"},
		{"Artist|", "", "Artist|"},
	}

	for _, tt := range tests {
		artist, album := SplitArtistTitle(tt.in)
		if artist != tt.wantArtist || album != tt.wantAlbum {
			t.Errorf("SplitArtistTitle(%q) = (%q, %q), want (%q, %q)", tt.in, artist, album, tt.wantArtist, tt.wantAlbum)
		}
	}
}

func TestExtractISBN(t *testing.T) {
	tests := []struct {
		in       string
		wantISBN string
		wantRest string
	}{
		{"Dune 9780441013593", "9780441013593", "Dune"},
		{"9791032102046 Le Petit Prince", "9791032102046", "Le Petit Prince"},
		{"Dune 044101359x Ace", "044101359X", "Dune Ace"},
		{"Dune", "", "Dune"},
		{"Catalog 1234567890123", "", "Catalog 1234567890123"},
	}

	for _, tt := range tests {
		isbn, rest := ExtractISBN(tt.in)
		if isbn != tt.wantISBN || rest != tt.wantRest {
			t.Errorf("ExtractISBN(%q) = (%q, %q), want (%q, %q)", tt.in, isbn, rest, tt.wantISBN, tt.wantRest)
		}
	}
}
