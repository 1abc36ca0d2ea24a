/*
 * Instaman - Simple Instagram account manager.
 *
 * Copyright (C) 2024 Luca Contini
 *
 * This program is free software: you can redistribute it and/or modify it
 * under the terms of the GNU General Public License as published by the Free
 * Software Foundation, either version 3 of the License, or (at your option)
 * any later version.
 *
 * This program is distributed in the hope that it will be useful, but WITHOUT
 * ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
 * FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License for
 * more details.
 *
 * You should have received a copy of the GNU General Public License along with
 * this program. If not, see <http://www.gnu.org/licenses/>.
 */

package models_test

import (
	"testing"

	"github.com/jdh4601/fashion-influencer-matcher/database/models"
	"github.com/stretchr/testify/assert"
)

func TestNewDecodedJob(t *testing.T) {
	t.Parallel()

	type wants struct {
		err error
		out *models.JobParameters
	}

	tests := map[string]struct {
		in string
		wants
	}{
		"invalid - blank": {
			in: "",
			wants: wants{
				err: models.ErrInvalidMetadata,
			},
		},
		"invalid - no brand handle": {
			in: `{"influencerHandles":["a"]}`,
			wants: wants{
				err: models.ErrInvalidHandle,
			},
		},
		"invalid - empty brand handle": {
			in: `{"brandHandle":"", "influencerHandles":["a"]}`,
			wants: wants{
				err: models.ErrInvalidHandle,
			},
		},
		"valid - full parameters": {
			in: `{"brandHandle":"acme", "influencerHandles":["a","b"], "minGrade":"B"}`,
			wants: wants{
				out: &models.JobParameters{
					BrandHandle:       "acme",
					InfluencerHandles: []string{"a", "b"},
					MinGrade:          "B",
				},
			},
		},
		"valid - no min grade": {
			in: `{"brandHandle":"acme", "influencerHandles":["a"]}`,
			wants: wants{
				out: &models.JobParameters{
					BrandHandle:       "acme",
					InfluencerHandles: []string{"a"},
				},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			job := &models.Job{
				BinData: []byte(test.in),
				ID:      123,
			}

			dj, err := models.NewDecodedJob(job)

			if test.wants.err != nil {
				assert.ErrorIs(t, err, test.wants.err)

				return
			}

			assert.Equal(t, int64(123), dj.ID)
			assert.Equal(t, test.wants.out, &dj.Parameters)
		})
	}
}
