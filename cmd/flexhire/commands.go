package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flexhire/flexhire/internal/config"
	"github.com/flexhire/flexhire/internal/storage"
)

type sessionResponse struct {
	Token string       `json:"token"`
	User  storage.User `json:"user"`
}

// --- register / login ---

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and start a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := map[string]any{}
		for _, f := range []string{"email", "password", "name", "location", "phone", "skills", "experience", "bio"} {
			if v, _ := cmd.Flags().GetString(f); v != "" {
				req[f] = v
			}
		}
		role, _ := cmd.Flags().GetString("role")
		switch role {
		case "seeker":
			req["user_type"] = storage.RoleSeeker
		case "provider":
			req["user_type"] = storage.RoleProvider
		default:
			return fmt.Errorf("--role must be seeker or provider")
		}

		client, err := newAnonClient()
		if err != nil {
			return err
		}
		resp, err := client.post("/auth/register", req)
		if err != nil {
			return err
		}
		var session sessionResponse
		if err := decodeJSON(resp, &session); err != nil {
			return err
		}

		if err := saveSession(session); err != nil {
			return err
		}
		printSuccess("Registered %s (%s)", session.User.Email, session.User.UserType)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" || password == "" {
			return fmt.Errorf("--email and --password are required")
		}

		client, err := newAnonClient()
		if err != nil {
			return err
		}
		resp, err := client.post("/auth/login", map[string]string{"email": email, "password": password})
		if err != nil {
			return err
		}
		var session sessionResponse
		if err := decodeJSON(resp, &session); err != nil {
			return err
		}

		if err := saveSession(session); err != nil {
			return err
		}
		printSuccess("Logged in as %s (%s)", session.User.Email, session.User.UserType)
		return nil
	},
}

func saveSession(s sessionResponse) error {
	return saveCredentials(credentials{
		Token:  s.Token,
		UserID: s.User.ID,
		Email:  s.User.Email,
		Role:   s.User.UserType,
	})
}

func init() {
	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("password", "", "account password")
	registerCmd.Flags().String("name", "", "display name")
	registerCmd.Flags().String("role", "", "seeker or provider")
	registerCmd.Flags().String("location", "", "home location")
	registerCmd.Flags().String("phone", "", "phone number")
	registerCmd.Flags().String("skills", "", "comma-separated skills")
	registerCmd.Flags().String("experience", "", "experience summary")
	registerCmd.Flags().String("bio", "", "short bio")

	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")
}

// --- jobs ---

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Post, browse, and manage jobs",
}

var jobsPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a new job",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := map[string]any{}
		for _, f := range []string{"title", "description", "category", "location", "skills", "urgency"} {
			if v, _ := cmd.Flags().GetString(f); v != "" {
				key := f
				if f == "skills" {
					key = "skills_required"
				}
				req[key] = v
			}
		}
		durationType, _ := cmd.Flags().GetString("duration")
		durationValue, _ := cmd.Flags().GetInt("duration-value")
		budget, _ := cmd.Flags().GetInt64("budget")
		req["duration_type"] = durationType
		req["duration_value"] = durationValue
		req["budget"] = budget

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post("/jobs", req)
		if err != nil {
			return err
		}
		var job storage.Job
		if err := decodeJSON(resp, &job); err != nil {
			return err
		}
		printSuccess("Posted job %s", job.ID)
		return nil
	},
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Browse open jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := []string{}
		for flag, param := range map[string]string{
			"category": "category",
			"location": "location",
			"duration": "duration",
			"search":   "search",
		} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				query = append(query, param+"="+v)
			}
		}
		if v, _ := cmd.Flags().GetInt64("max-budget"); v > 0 {
			query = append(query, fmt.Sprintf("max_budget=%d", v))
		}
		path := "/jobs"
		if len(query) > 0 {
			path += "?" + strings.Join(query, "&")
		}

		client, err := newAnonClient()
		if err != nil {
			return err
		}
		resp, err := client.get(path)
		if err != nil {
			return err
		}
		var jobs []storage.Job
		if err := decodeJSON(resp, &jobs); err != nil {
			return err
		}

		if len(jobs) == 0 {
			fmt.Println("No open jobs found.")
			return nil
		}
		for _, j := range jobs {
			printJobLine(j)
		}
		return nil
	},
}

func printJobLine(j storage.Job) {
	fmt.Printf("%s  %-12s %-10s %6d  %s\n",
		colorize(colorCyan, j.ID[:8]),
		j.Category,
		j.Location,
		j.Budget,
		j.Title,
	)
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single job as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAnonClient()
		if err != nil {
			return err
		}
		resp, err := client.get("/jobs/" + args[0])
		if err != nil {
			return err
		}
		var job any
		if err := decodeJSON(resp, &job); err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(job)
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a job you posted (applications go with it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.delete("/jobs/" + args[0])
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		printSuccess("Deleted job %s", args[0])
		return nil
	},
}

func init() {
	jobsPostCmd.Flags().String("title", "", "job title")
	jobsPostCmd.Flags().String("description", "", "job description")
	jobsPostCmd.Flags().String("category", "", "job category")
	jobsPostCmd.Flags().String("location", "", "job location")
	jobsPostCmd.Flags().String("duration", "daily", "duration type (hourly, daily, weekly, monthly)")
	jobsPostCmd.Flags().Int("duration-value", 1, "duration count")
	jobsPostCmd.Flags().Int64("budget", 0, "budget in whole currency units")
	jobsPostCmd.Flags().String("skills", "", "required skills")
	jobsPostCmd.Flags().String("urgency", "", "urgency (normal, urgent, very-urgent)")

	jobsListCmd.Flags().String("category", "", "filter by category")
	jobsListCmd.Flags().String("location", "", "filter by location substring")
	jobsListCmd.Flags().String("duration", "", "filter by duration type")
	jobsListCmd.Flags().Int64("max-budget", 0, "filter by maximum budget")
	jobsListCmd.Flags().String("search", "", "filter by title substring")

	jobsCmd.AddCommand(jobsPostCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsDeleteCmd)
}

// --- applications ---

var applyCmd = &cobra.Command{
	Use:   "apply <job-id>",
	Short: "Apply to an open job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post("/jobs/"+args[0]+"/applications", nil)
		if err != nil {
			return err
		}
		var app storage.Application
		if err := decodeJSON(resp, &app); err != nil {
			return err
		}
		printSuccess("Applied to job %s", args[0])
		return nil
	},
}

var applicationsCmd = &cobra.Command{
	Use:   "applications",
	Short: "List your applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get("/users/" + client.creds.UserID + "/applications")
		if err != nil {
			return err
		}
		var apps []storage.Application
		if err := decodeJSON(resp, &apps); err != nil {
			return err
		}

		if len(apps) == 0 {
			fmt.Println("No applications yet.")
			return nil
		}
		for _, a := range apps {
			fmt.Printf("%s  job %s  %s  %s\n",
				colorize(colorCyan, a.ID[:8]),
				a.JobID[:8],
				a.AppliedDate.Format("2006-01-02"),
				a.Status,
			)
		}
		return nil
	},
}

var applicantsCmd = &cobra.Command{
	Use:   "applicants <job-id>",
	Short: "List applicants on a job you posted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get("/jobs/" + args[0] + "/applications")
		if err != nil {
			return err
		}
		var apps []storage.Application
		if err := decodeJSON(resp, &apps); err != nil {
			return err
		}

		if len(apps) == 0 {
			fmt.Println("No applicants yet.")
			return nil
		}
		for _, a := range apps {
			fmt.Printf("%s  %s <%s>  applied %s\n",
				colorize(colorCyan, a.UserID[:8]),
				a.ApplicantName,
				a.ApplicantEmail,
				a.AppliedDate.Format("2006-01-02"),
			)
		}
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <job-id> <applicant-id>",
	Short: "Select an applicant and move the job to in-progress",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		body := map[string]string{
			"status":                storage.JobInProgress,
			"selected_applicant_id": args[1],
		}
		resp, err := client.patch("/jobs/"+args[0], body)
		if err != nil {
			return err
		}
		var job storage.Job
		if err := decodeJSON(resp, &job); err != nil {
			return err
		}
		printSuccess("Selected %s for job %s", args[1], args[0])
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <job-id>",
	Short: "Mark an in-progress job completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.patch("/jobs/"+args[0], map[string]string{"status": storage.JobCompleted})
		if err != nil {
			return err
		}
		var job storage.Job
		if err := decodeJSON(resp, &job); err != nil {
			return err
		}
		printSuccess("Job %s completed", args[0])
		return nil
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <user-id>",
	Short: "Rate the seeker who worked a completed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID, _ := cmd.Flags().GetString("job")
		score, _ := cmd.Flags().GetInt("score")
		comment, _ := cmd.Flags().GetString("comment")
		if jobID == "" {
			return fmt.Errorf("--job is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		body := map[string]any{"job_id": jobID, "score": score, "comment": comment}
		resp, err := client.post("/users/"+args[0]+"/ratings", body)
		if err != nil {
			return err
		}
		var rating storage.Rating
		if err := decodeJSON(resp, &rating); err != nil {
			return err
		}
		printSuccess("Rated %s: %d/5", args[0], score)
		return nil
	},
}

func init() {
	rateCmd.Flags().String("job", "", "the completed job being rated")
	rateCmd.Flags().Int("score", 5, "score from 1 to 5")
	rateCmd.Flags().String("comment", "", "optional comment")
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get("/users/" + client.creds.UserID + "/profile")
		if err != nil {
			return err
		}
		var profile any
		if err := decodeJSON(resp, &profile); err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set a profile field (name, location, phone, skills, experience, bio)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, value := args[0], args[1]

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.put("/users/"+client.creds.UserID+"/profile", map[string]string{field: value})
		if err != nil {
			return err
		}
		var profile any
		if err := decodeJSON(resp, &profile); err != nil {
			return err
		}
		printSuccess("Set %s = %s", field, value)
		return nil
	},
}

var profileResumeCmd = &cobra.Command{
	Use:   "resume <file.pdf>",
	Short: "Upload a PDF resume; recognized skills merge into your profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading resume: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		body := map[string]string{"content": base64.StdEncoding.EncodeToString(data)}
		resp, err := client.post("/users/"+client.creds.UserID+"/resume", body)
		if err != nil {
			return err
		}
		var result struct {
			Skills      []string `json:"skills"`
			SkillsField string   `json:"skills_field"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Skills) == 0 {
			printWarning("No recognized skills found in the resume")
			return nil
		}
		printSuccess("Found skills: %s", strings.Join(result.Skills, ", "))
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileResumeCmd)
}

// --- notifications ---

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List your notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get("/notifications")
		if err != nil {
			return err
		}
		var notifications []storage.Notification
		if err := decodeJSON(resp, &notifications); err != nil {
			return err
		}

		if len(notifications) == 0 {
			fmt.Println("No notifications.")
			return nil
		}
		for _, n := range notifications {
			marker := colorize(colorYellow, "●")
			if n.Read {
				marker = " "
			}
			fmt.Printf("%s %s  %s\n", marker, n.CreatedAt.Format("2006-01-02 15:04"), n.Body)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
