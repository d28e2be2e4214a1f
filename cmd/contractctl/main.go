package main

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meninojhony/modec-challenger/client"
	"github.com/meninojhony/modec-challenger/coordinator"
	"github.com/meninojhony/modec-challenger/model"
	"github.com/meninojhony/modec-challenger/state"
	"github.com/meninojhony/modec-challenger/urlsync"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// session wires the client-side stack the way a page would: one remote
// client, one store, one coordinator.
type session struct {
	api   *client.Client
	store *state.Store
	coord *coordinator.Coordinator
}

func newSession(baseURL, token string) *session {
	api := client.New(baseURL)
	if token != "" {
		api.SetToken(token)
	}
	store := state.New()
	return &session{
		api:   api,
		store: store,
		coord: coordinator.New(api, store),
	}
}

// parseFilterString decodes a query-string-shaped filter expression, e.g.
// "status=active&min_value=100".
func parseFilterString(raw string) (model.Filters, error) {
	if raw == "" {
		return model.Filters{}, nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return model.Filters{}, fmt.Errorf("invalid filter expression: %w", err)
	}
	return urlsync.DecodeFilters(values), nil
}

type listFlags struct {
	filter   string
	page     int
	pageSize int
	sortBy   string
	sortDir  string
}

func main() {
	var baseURL, token string

	root := &cobra.Command{
		Use:     "contractctl",
		Short:   "Manage service-provider contracts from the command line",
		Version: version,
	}
	root.PersistentFlags().StringVar(&baseURL, "api", envOr("CONTRACTCTL_API", "http://localhost:8080/api"), "API base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("CONTRACTCTL_TOKEN"), "Bearer token (defaults to CONTRACTCTL_TOKEN)")

	loginCmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate and print a token for CONTRACTCTL_TOKEN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("CONTRACTCTL_PASSWORD")
			if password == "" {
				return fmt.Errorf("set CONTRACTCTL_PASSWORD before logging in")
			}
			return printToken(cmd.Context(), baseURL, args[0], password)
		},
	}

	var lf listFlags
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List contracts with filters and pagination",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseFilterString(lf.filter)
			if err != nil {
				return err
			}
			s := newSession(baseURL, token)

			pagination := model.DefaultPagination()
			if lf.page > 0 {
				pagination.Page = lf.page
			}
			if lf.pageSize > 0 {
				pagination.PageSize = lf.pageSize
			}
			if lf.sortBy != "" {
				pagination.SortBy = lf.sortBy
				pagination.SortDir = model.SortAsc
			}
			if lf.sortDir == model.SortAsc || lf.sortDir == model.SortDesc {
				pagination.SortDir = lf.sortDir
			}

			s.store.Dispatch(state.SetFilters{Filters: filters})
			s.store.Dispatch(state.SetPagination{Pagination: pagination})

			if err := s.coord.FetchList(cmd.Context(), nil, nil); err != nil {
				return fmt.Errorf("%s", s.store.Snapshot().Error)
			}
			printListing(s.store.Snapshot())
			return nil
		},
	}
	listCmd.Flags().StringVar(&lf.filter, "filter", "", `Filter expression, e.g. "status=active&min_value=100"`)
	listCmd.Flags().IntVar(&lf.page, "page", 1, "Page number (1-based)")
	listCmd.Flags().IntVar(&lf.pageSize, "page-size", 10, "Items per page")
	listCmd.Flags().StringVar(&lf.sortBy, "sort", "", "Sort field (start_date, end_date, value, ...)")
	listCmd.Flags().StringVar(&lf.sortDir, "dir", "", "Sort direction: asc or desc")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(baseURL, token)
			contract, err := s.coord.FetchOne(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", s.store.Snapshot().Error)
			}
			return printYAML(contract)
		},
	}

	createCmd := &cobra.Command{
		Use:   "create -f <file.yaml>",
		Short: "Create a contract from a YAML payload",
	}
	createFile := createCmd.Flags().StringP("file", "f", "", "YAML file with the contract payload")
	createCmd.RunE = func(cmd *cobra.Command, args []string) error {
		var input model.ContractCreate
		if err := readYAMLFile(*createFile, &input); err != nil {
			return err
		}
		s := newSession(baseURL, token)
		contract, err := s.coord.Create(cmd.Context(), input)
		if err != nil {
			return fmt.Errorf("%s", s.store.Snapshot().Error)
		}
		fmt.Printf("created %s (%s)\n", contract.ContractNumber, contract.ID)
		return nil
	}

	updateCmd := &cobra.Command{
		Use:   "update <id> -f <file.yaml>",
		Short: "Update contract fields from a YAML payload",
		Args:  cobra.ExactArgs(1),
	}
	updateFile := updateCmd.Flags().StringP("file", "f", "", "YAML file with the fields to change")
	updateCmd.RunE = func(cmd *cobra.Command, args []string) error {
		var input model.ContractUpdate
		if err := readYAMLFile(*updateFile, &input); err != nil {
			return err
		}
		s := newSession(baseURL, token)
		contract, err := s.coord.Update(cmd.Context(), args[0], input)
		if err != nil {
			return fmt.Errorf("%s", s.store.Snapshot().Error)
		}
		fmt.Printf("updated %s (%s)\n", contract.ContractNumber, contract.ID)
		return nil
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(baseURL, token)
			if err := s.coord.Remove(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", s.store.Snapshot().Error)
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}

	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "List contract categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(baseURL, token)
			categories, err := s.coord.FetchCategories(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", s.store.Snapshot().Error)
			}
			for _, cat := range categories {
				fmt.Printf("%4d  %s\n", cat.ID, cat.Name)
			}
			return nil
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show a contract's change history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(baseURL, token)
			history, err := s.api.ListHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printYAML(history)
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(baseURL, token)
			stats, err := s.api.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("total: %d\nactive: %d\nexpiring soon: %d\ntotal value: %.2f\n",
				stats.Total, stats.Active, stats.ExpiringSoon, stats.TotalValue)
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered listing to an XLSX file",
	}
	exportFilter := exportCmd.Flags().String("filter", "", `Filter expression, e.g. "status=active"`)
	exportOut := exportCmd.Flags().StringP("out", "o", "contracts.xlsx", "Output file")
	exportCmd.RunE = func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilterString(*exportFilter)
		if err != nil {
			return err
		}
		out, err := os.Create(*exportOut)
		if err != nil {
			return err
		}
		defer out.Close()

		s := newSession(baseURL, token)
		if err := s.api.Export(cmd.Context(), filters, out); err != nil {
			return err
		}
		fmt.Println("wrote", *exportOut)
		return nil
	}

	root.AddCommand(loginCmd, listCmd, getCmd, createCmd, updateCmd,
		deleteCmd, categoriesCmd, historyCmd, statsCmd, exportCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printToken(ctx context.Context, baseURL, username, password string) error {
	api := client.New(baseURL)
	if err := api.Login(ctx, username, password); err != nil {
		return err
	}
	// The token goes to stdout alone so it can be captured:
	//   export CONTRACTCTL_TOKEN=$(contractctl login admin)
	fmt.Println(api.Token())
	return nil
}

func printListing(snapshot state.Snapshot) {
	for _, c := range snapshot.Contracts {
		fmt.Printf("%-36s  %-15s  %-20s  %-10s  %12.2f  %s..%s\n",
			c.ID, c.ContractNumber, c.Supplier, c.Status, c.Value,
			c.StartDate, c.EndDate)
	}
	fmt.Printf("page %d/%d, %d contracts\n",
		snapshot.CurrentPage, snapshot.TotalPages, snapshot.TotalContracts)
}

func printYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func readYAMLFile(path string, v any) error {
	if path == "" {
		return fmt.Errorf("a payload file is required (-f)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
