/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"strings"

	models_calendar "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/calendar"
	"github.com/spf13/cobra"
)

func newEventCommand(c *ctl) *cobra.Command {
	eventCmd := &cobra.Command{
		Use:   "event",
		Short: "Query the calendar events of a context",
	}
	var facets []string
	var from, until string
	var req models_calendar.SearchRequest
	searchCmd := &cobra.Command{
		Use:   "search <cid>",
		Short: "Search events by facets and time range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := parseID(args[0])
			if err != nil {
				return err
			}
			if req.Facets, err = parseFacets(facets); err != nil {
				return err
			}
			if req.From, err = parseTime(from); err != nil {
				return err
			}
			if req.Until, err = parseTime(until); err != nil {
				return err
			}
			res, err := c.srv.SearchEvents(cmd.Context(), cid, req)
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
	flags := searchCmd.Flags()
	flags.StringArrayVar(&facets, "facet", nil, "facet as type=value, repeated types are combined")
	flags.StringVar(&from, "from", "", "events ending after (RFC3339)")
	flags.StringVar(&until, "until", "", "events starting before (RFC3339)")
	flags.StringVar(&req.Order, "order", models_calendar.OrderStartAsc, "start_asc or start_desc")
	flags.IntVar(&req.Limit, "limit", 0, "maximum number of events")
	flags.IntVar(&req.Offset, "offset", 0, "number of events to skip")
	eventCmd.AddCommand(searchCmd)
	return eventCmd
}

func parseFacets(items []string) ([]models_calendar.Facet, error) {
	var facets []models_calendar.Facet
	index := make(map[string]int)
	for _, item := range items {
		t, v, ok := strings.Cut(item, "=")
		if !ok || t == "" {
			return nil, fmt.Errorf("invalid facet '%s'", item)
		}
		i, ok := index[t]
		if !ok {
			i = len(facets)
			index[t] = i
			facets = append(facets, models_calendar.Facet{Type: t})
		}
		facets[i].Values = append(facets[i].Values, v)
	}
	return facets, nil
}
